package rod

import (
	"context"
	"time"
)

// DocumentStatus exposes documentStatus to external tests.
type DocumentStatus = documentStatus

func NewDocumentStatus() *DocumentStatus { return newDocumentStatus() }

func (s *documentStatus) Set(code int) { s.set(code) }

func (s *documentStatus) Wait(ctx context.Context, timeout time.Duration) int {
	return s.wait(ctx, timeout)
}
