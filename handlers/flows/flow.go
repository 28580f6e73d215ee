package flows

// Step types a wizard can present.
const (
	StepForm           = "form"
	StepVideo          = "video"
	StepVideoSurrender = "video_surrender"
	StepPincodeDisplay = "pincode_display"
	StepDownload       = "download"
	StepConfirmation   = "confirmation"
)

// Flow kinds.
const (
	FlowDeviceSetup  = "device_setup_flow"
	FlowDeviceUnlock = "device_unlock_flow"
)

// Instance status values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Step describes one position in a wizard.
type Step struct {
	Number int    `json:"number"`
	Type   string `json:"type"`
	Title  string `json:"title"`
}

// Definition is an ordered wizard. Definitions are static; instances carry
// all mutable state.
type Definition struct {
	Kind  string `json:"kind"`
	Steps []Step `json:"steps"`
}

func (d Definition) TotalSteps() int { return len(d.Steps) }

func (d Definition) Step(n int) Step { return d.Steps[n-1] }

var setupFlow = Definition{
	Kind: FlowDeviceSetup,
	Steps: []Step{
		{1, StepForm, "Name your device"},
		{2, StepVideo, "How monitoring works"},
		{3, StepDownload, "Install the filter profile"},
		{4, StepPincodeDisplay, "Your pincode and audio guide"},
		{5, StepVideo, "Hand over the pincode"},
		{6, StepConfirmation, "Setup complete"},
	},
}

var unlockFlow = Definition{
	Kind: FlowDeviceUnlock,
	Steps: []Step{
		{1, StepVideo, "Before you unlock"},
		{2, StepVideoSurrender, "Record your surrender"},
		{3, StepPincodeDisplay, "Your unlock pincode"},
		{4, StepConfirmation, "Device removed"},
	},
}

// The step numbers that carry side effects in the setup flow.
const (
	setupVPNStep     = 3
	setupPincodeStep = 4
)

// unlockExecuteStep is where the unlock flow performs its unlock+removal.
const unlockExecuteStep = 3

func definitionFor(kind string) (Definition, bool) {
	switch kind {
	case FlowDeviceSetup:
		return setupFlow, true
	case FlowDeviceUnlock:
		return unlockFlow, true
	}
	return Definition{}, false
}
