package actions

import (
	"context"
	"log/slog"

	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

func SendEmail(ctx context.Context, step domain.Step) {
	slog.InfoContext(ctx, "Email sent", "step", step.Name)
}

func UpdateGrant(ctx context.Context, step domain.Step) {
	slog.InfoContext(ctx, "Grant updated", "step", step.Name)
}

// DefaultAction handles any step type without a registered handler.
func DefaultAction(ctx context.Context, step domain.Step) {
	slog.InfoContext(ctx, "Unknown step type, treating as success", "step", step.Name, "type", step.Type)
}
