package datasource

import (
	"context"

	"github.com/guileen/gridsource/types"
)

// Adapter is the row source handed to one display client. It forwards each
// block request to a Source and keeps the client's no-data overlay in step
// with the result.
type Adapter struct {
	source   *Source
	notifier Notifier
}

// NewAdapter binds source to notifier. A nil notifier discards notifications.
func NewAdapter(source *Source, notifier Notifier) *Adapter {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Adapter{source: source, notifier: notifier}
}

// RequestBlock serves one block. When the filtered result is empty the
// notifier is told to show its no-data state, otherwise to clear it; a
// malformed request leaves it untouched.
func (a *Adapter) RequestBlock(ctx context.Context, req types.BlockRequest) types.BlockResponse {
	resp := a.source.Fetch(ctx, req)
	if !resp.Success {
		return resp
	}

	if resp.TotalMatchingCount == 0 {
		a.notifier.ShowNoData()
	} else {
		a.notifier.ClearNoData()
	}
	return resp
}

// Source returns the dataset behind the adapter
func (a *Adapter) Source() *Source {
	return a.source
}
