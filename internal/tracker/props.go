package tracker

// TrackerProps feeds the step visualization.
type TrackerProps struct {
	CurrentStep    Step
	PrintingActive bool
	ReadyForPickup bool
}

// FormProps feeds the request form.
type FormProps struct {
	Disabled   bool
	ButtonText string
}

// HistoryProps feeds the history list. It carries no entries: the list loads
// them itself from the register number, so none are held in State.
type HistoryProps struct {
	RegisterNumber string
}

func (s State) Tracker() TrackerProps {
	return TrackerProps{CurrentStep: s.Step, PrintingActive: s.PrintingActive, ReadyForPickup: s.ReadyForPickup}
}

// Form disables submission while printing, while a popup gates the screen,
// and when the server says the form is closed.
func (s State) Form() FormProps {
	return FormProps{
		Disabled:   !s.HasIdentity() || !s.FormEnabled || s.PrintingActive || s.Popup.Open(),
		ButtonText: s.ButtonText,
	}
}

func (s State) History() HistoryProps {
	return HistoryProps{RegisterNumber: s.Identity}
}
