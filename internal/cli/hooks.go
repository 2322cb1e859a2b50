package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gluedoc/pkg/observability"
)

// logHooks reports document and clipboard events at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.DocumentHooks  = logHooks{}
	_ observability.ClipboardHooks = logHooks{}
)

// InstallHooks routes document and clipboard events to the CLI logger.
func (c *CLI) InstallHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetDocumentHooks(h)
	observability.SetClipboardHooks(h)
}

func (h logHooks) OnLoad(_ context.Context, location string, objects int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "location", location, "elapsed", d.Round(time.Microsecond), "err", err)
		return
	}
	h.logger.Debug("loaded", "location", location, "objects", objects, "elapsed", d.Round(time.Microsecond))
}

func (h logHooks) OnRefresh(_ context.Context, location string, revision int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("refresh failed", "location", location, "revision", revision, "err", err)
		return
	}
	h.logger.Debug("refreshed", "location", location, "revision", revision, "elapsed", d.Round(time.Microsecond))
}

func (h logHooks) OnSave(_ context.Context, location string, size int) {
	h.logger.Debug("saved", "location", location, "bytes", size)
}

func (h logHooks) OnClone(_ context.Context, objects, renamed int) {
	h.logger.Debug("cloned", "objects", objects, "renamed", renamed)
}

func (h logHooks) OnPut(_ context.Context, key string, entries int) {
	h.logger.Debug("clipboard put", "key", key, "entries", entries)
}

func (h logHooks) OnGet(_ context.Context, key string, found bool) {
	h.logger.Debug("clipboard get", "key", key, "found", found)
}
