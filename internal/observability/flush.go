package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry runs before process exit. A batch run cannot be scraped, so
// metrics are written to textfilePath when it is set; logs are synced last.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, textfilePath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("flush telemetry: %w", err)
	}
	if textfilePath != "" {
		if err := WriteTextfile(textfilePath); err != nil {
			return err
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
