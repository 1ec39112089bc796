package catalog_test

import (
	"testing"

	"github.com/aretw0/onboard/pkg/catalog"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		slug      string
		kind      domain.Kind
		templated bool
	}{
		{"todo", domain.KindToDo, true},
		{"ToDo", domain.KindToDo, true},
		{"Resource", domain.KindResource, true},
		{"pendingemailmessage", domain.KindExternalMessage, false},
		{"PendingSlackMessage", domain.KindExternalMessage, false},
		{"pendingadmintask", domain.KindPendingAdminTask, false},
		{"accountprovision", domain.KindAccountProvision, false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			e, ok := catalog.Lookup(tt.slug)
			require.True(t, ok)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.templated, e.Templated())
		})
	}

	_, ok := catalog.Lookup("sequence")
	assert.False(t, ok)
}

func TestTemplateLookupRejectsSequenceOnly(t *testing.T) {
	_, ok := catalog.TemplateLookup("pendingadmintask")
	assert.False(t, ok)
	_, ok = catalog.TemplateLookup("accountprovision")
	assert.False(t, ok)

	e, ok := catalog.TemplateLookup("badge")
	require.True(t, ok)
	assert.Equal(t, "Badge", e.Label)
}

func TestEntryPinsChannel(t *testing.T) {
	e, ok := catalog.Lookup("pendingslackmessage")
	require.True(t, ok)

	msg, ok := e.New().(*domain.ExternalMessage)
	require.True(t, ok)
	assert.Equal(t, domain.ChannelSlack, msg.SendVia)

	msg.SendVia = domain.ChannelEmail
	e.Apply(msg)
	assert.Equal(t, domain.ChannelSlack, msg.SendVia)

	back, ok := catalog.ForItem(msg)
	require.True(t, ok)
	assert.Equal(t, "pendingslackmessage", back.Slug)

	summary := catalog.Summarize(msg)
	assert.Equal(t, "pendingslackmessage", summary.Slug)
	assert.Equal(t, "Slack message", summary.Label)
}
