package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/mock"
	dslog "github.com/fwojciec/docsift/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMirror(t *testing.T) {
	t.Parallel()

	t.Run("logs saves with entry count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.MirrorStore{
			SavePageFn: func(ctx context.Context, siteKey, pageURL string, entries []docsift.MirrorEntry) error {
				return nil
			},
		}

		mirror := dslog.NewLoggingMirror(inner, newLogger(&buf))
		err := mirror.SavePage(context.Background(), "site", "https://example.com/docs/a", make([]docsift.MirrorEntry, 2))

		require.NoError(t, err)
		assert.Contains(t, buf.String(), `msg="mirror save"`)
		assert.Contains(t, buf.String(), "entries=2")
	})

	t.Run("logs loads and ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.MirrorStore{
			LoadEntriesFn: func(ctx context.Context, siteKey string) ([]docsift.MirrorEntry, error) {
				return nil, docsift.Errorf(docsift.ENOTFOUND, "site not mirrored")
			},
		}

		mirror := dslog.NewLoggingMirror(inner, newLogger(&buf))
		_, err := mirror.LoadEntries(context.Background(), "site")

		assert.Equal(t, docsift.ENOTFOUND, docsift.ErrorCode(err))
		assert.Contains(t, buf.String(), `msg="mirror load"`)
		assert.Contains(t, buf.String(), "site=site")
	})

	t.Run("delegates deletes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var deleted string
		inner := &mock.MirrorStore{
			DeleteSiteFn: func(ctx context.Context, siteKey string) error {
				deleted = siteKey
				return nil
			},
		}

		mirror := dslog.NewLoggingMirror(inner, newLogger(&buf))

		require.NoError(t, mirror.DeleteSite(context.Background(), "site"))
		assert.Equal(t, "site", deleted)
	})
}
