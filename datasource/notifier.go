package datasource

// Notifier is the display collaborator told whether the current filter
// matches anything at all.
type Notifier interface {
	ShowNoData()
	ClearNoData()
}

// NopNotifier ignores every notification
type NopNotifier struct{}

func (NopNotifier) ShowNoData()  {}
func (NopNotifier) ClearNoData() {}

// NotifierFuncs adapts a pair of functions to Notifier. Nil fields are skipped.
type NotifierFuncs struct {
	OnShowNoData  func()
	OnClearNoData func()
}

func (n NotifierFuncs) ShowNoData() {
	if n.OnShowNoData != nil {
		n.OnShowNoData()
	}
}

func (n NotifierFuncs) ClearNoData() {
	if n.OnClearNoData != nil {
		n.OnClearNoData()
	}
}
