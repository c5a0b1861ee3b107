package output

import (
	"context"

	"github.com/hejijunhao/qrsheet/internal/model"
)

// Output defines the interface for processed scan destinations.
type Output interface {
	Write(ctx context.Context, scan model.Scan) error
	Close() error
}
