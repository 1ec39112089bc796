package onboard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/onboard"
	"github.com/aretw0/onboard/internal/config"
	"github.com/aretw0/onboard/pkg/forms"
)

// ExampleNew builds a sequence in memory: a to-do assigned on day one and a
// welcome resource handed out on the third workday.
func ExampleNew() {
	ctx := context.Background()

	app, err := onboard.New(ctx, config.Default())
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	seq, err := app.Sequences.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}
	tl, err := app.Sequences.Timeline(ctx, seq.ID)
	if err != nil {
		log.Fatal(err)
	}
	first := tl.Conditions[0].ID

	later, err := app.Sequences.CreateCondition(ctx, seq.ID, forms.Values{
		"condition_type": 0,
		"days":           3,
		"time":           "09:00",
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := app.Sequences.SaveItem(ctx, "todo", 0, first, forms.Values{"name": "Sign contract"}); err != nil {
		log.Fatal(err)
	}
	if _, err := app.Sequences.SaveItem(ctx, "resource", 0, later.ID, forms.Values{"name": "Handbook"}); err != nil {
		log.Fatal(err)
	}

	tl, err = app.Sequences.Timeline(ctx, seq.ID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tl.Sequence.Name)
	for _, c := range tl.Conditions {
		for kind, items := range c.Items {
			for _, item := range items {
				fmt.Printf("%s day %d: %s %s\n", c.TypeName, c.Days, kind, item.Title)
			}
		}
	}
	// Output:
	// New sequence
	// unconditioned day 0: todo Sign contract
	// after_start day 3: resource Handbook
}
