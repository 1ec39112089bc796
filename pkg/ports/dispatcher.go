package ports

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
)

// ActionDispatcher delivers side-effects requested by the trigger processor.
// The service emits requests; the host decides how they reach email, Slack or
// a provisioning API.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req domain.ActionRequest) error
}
