package flows

import (
	"errors"
	"strings"
	"sync"
	"time"

	"screentime-journey-server/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry is the device store the engine commits to. Implemented over the
// portal database in production; tests substitute a fake.
type Registry interface {
	CountDevices(customerID string) (int, error)
	DeviceExists(customerID, deviceID string) (bool, error)
	InsertDevice(customerID string, device *models.Device) error
	UpdateDevice(customerID, deviceID string, updates map[string]interface{}) error
	UnlockDevice(customerID, deviceID string, minutes *int) error
	RemoveDevice(customerID, deviceID string) error
}

// Provisioner performs the side-effecting generation calls a flow step can
// trigger: pincodes, audio guides, configuration profiles, surrender
// validation.
type Provisioner interface {
	IssuePincode(customerID, deviceID, purpose string) (string, error)
	GenerateAudioGuide(customerID, deviceID, pincode string) (string, error)
	GenerateVPNProfile(customerID, deviceID, deviceType, pincode string) (string, error)
	ValidateSurrender(customerID, recordingURL string) (approved bool, feedback string, err error)
}

// ErrValidation marks a blocked advance: the current form step has
// field-level errors recorded on the instance.
var ErrValidation = errors.New("validation failed")

// ErrFlowFinished is returned for transitions on a completed or cancelled
// instance.
var ErrFlowFinished = errors.New("flow is no longer active")

// Instance is one in-flight wizard. Instances live in memory only and are
// discarded when the wizard closes; nothing is persisted until the flow
// commits.
type Instance struct {
	ID          string `json:"id"`
	CustomerID  string `json:"-"`
	Kind        string `json:"kind"`
	CurrentStep int    `json:"current_step"`
	TotalSteps  int    `json:"total_steps"`
	Status      string `json:"status"`

	// Staging for device setup.
	DeviceID      string `json:"device_id,omitempty"`
	DeviceName    string `json:"device_name,omitempty"`
	DeviceType    string `json:"device_type,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	AudioGuideURL string `json:"audio_guide_url,omitempty"`
	VPNProfileURL string `json:"vpn_profile_url,omitempty"`

	// Unlock flow state.
	TargetDeviceID    string `json:"target_device_id,omitempty"`
	RecordingURL      string `json:"recording_url,omitempty"`
	UnlockPincode     string `json:"unlock_pincode,omitempty"`
	SurrenderFeedback string `json:"surrender_feedback,omitempty"`

	FieldErrors map[string]string `json:"field_errors,omitempty"`

	def Definition

	// Serializes transitions: two concurrent requests for the same wizard
	// must not both run a step's side effects.
	mu sync.Mutex

	// Guards the unlock+remove side effect against repeated entry into the
	// pincode_display step.
	unlockExecuted bool
}

// CurrentStepInfo returns the metadata of the step the instance sits on.
func (in *Instance) CurrentStepInfo() Step {
	return in.def.Step(in.CurrentStep)
}

// Engine drives flow instances through their steps.
type Engine struct {
	registry    Registry
	provisioner Provisioner
}

func NewEngine(registry Registry, provisioner Provisioner) *Engine {
	return &Engine{registry: registry, provisioner: provisioner}
}

// Start creates a fresh instance of the named flow. Setup flows are
// refused when the customer is already at the device cap; unlock flows
// need an existing target device.
func (e *Engine) Start(customerID, kind, targetDeviceID string) (*Instance, error) {
	def, ok := definitionFor(kind)
	if !ok {
		return nil, errors.New("unknown flow")
	}

	in := &Instance{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Kind:        kind,
		CurrentStep: 1,
		TotalSteps:  def.TotalSteps(),
		Status:      StatusActive,
		def:         def,
	}

	switch kind {
	case FlowDeviceSetup:
		count, err := e.registry.CountDevices(customerID)
		if err != nil {
			return nil, err
		}
		if count >= models.MaxDevicesPerCustomer {
			return nil, errors.New("device limit reached: a maximum of 3 devices can be monitored")
		}
		in.DeviceID = uuid.NewString()
	case FlowDeviceUnlock:
		if targetDeviceID == "" {
			return nil, errors.New("a device must be selected to unlock")
		}
		exists, err := e.registry.DeviceExists(customerID, targetDeviceID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errors.New("device not found")
		}
		in.TargetDeviceID = targetDeviceID
	}

	return in, nil
}

// Next advances the instance one step. Form steps validate their fields
// first; entry side effects of the target step run before the step number
// moves, so a failed remote call leaves the instance where it was for a
// manual retry. Advancing past the final step completes the flow.
func (e *Engine) Next(in *Instance, fields map[string]string) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.Status != StatusActive {
		return ErrFlowFinished
	}

	step := in.CurrentStepInfo()
	in.FieldErrors = nil
	in.SurrenderFeedback = ""

	switch step.Type {
	case StepForm:
		if errs := validateDeviceForm(fields); len(errs) > 0 {
			in.FieldErrors = errs
			return ErrValidation
		}
		in.DeviceName = strings.TrimSpace(fields["device_name"])
		in.DeviceType = fields["device_type"]

	case StepVideoSurrender:
		if url := fields["recording_url"]; url != "" {
			in.RecordingURL = url
		}
		if in.RecordingURL == "" {
			in.FieldErrors = map[string]string{"recording": "A recorded surrender statement is required."}
			return ErrValidation
		}
		approved, feedback, err := e.provisioner.ValidateSurrender(in.CustomerID, in.RecordingURL)
		if err != nil {
			return err
		}
		if !approved {
			// Stay on the step; the customer re-records.
			in.SurrenderFeedback = feedback
			return nil
		}
		code, err := e.provisioner.IssuePincode(in.CustomerID, in.TargetDeviceID, models.PincodePurposeUnlock)
		if err != nil {
			return err
		}
		in.UnlockPincode = code
	}

	if in.CurrentStep == in.TotalSteps {
		return e.complete(in)
	}

	if err := e.enterStep(in, in.CurrentStep+1); err != nil {
		return err
	}

	in.CurrentStep++
	return nil
}

// Prev steps the wizard back. Stepping below the first step is rejected.
func (e *Engine) Prev(in *Instance) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.Status != StatusActive {
		return ErrFlowFinished
	}
	if in.CurrentStep <= 1 {
		return errors.New("already at the first step")
	}
	in.CurrentStep--
	in.FieldErrors = nil
	in.SurrenderFeedback = ""
	return nil
}

// Cancel abandons the instance. No staged state is persisted.
func (e *Engine) Cancel(in *Instance) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.Status = StatusCancelled
}

// enterStep runs the side effects attached to entering the given step.
func (e *Engine) enterStep(in *Instance, step int) error {
	switch {
	case in.Kind == FlowDeviceSetup && step == setupPincodeStep:
		// Mandatory one-time pincode and audio guide, generated once per
		// flow. Synchronous, not retried: on failure the customer stays on
		// the previous step and retries by hand. A pincode issued by an
		// earlier macOS profile generation is reused, not reissued.
		if in.Pincode == "" {
			code, err := e.provisioner.IssuePincode(in.CustomerID, in.DeviceID, models.PincodePurposeSetup)
			if err != nil {
				return err
			}
			in.Pincode = code
		}
		if in.AudioGuideURL == "" {
			url, err := e.provisioner.GenerateAudioGuide(in.CustomerID, in.DeviceID, in.Pincode)
			if err != nil {
				return err
			}
			in.AudioGuideURL = url
		}

	case in.Kind == FlowDeviceUnlock && step == unlockExecuteStep:
		// Unlock then permanently remove, exactly once per instance. The
		// device is deleted regardless of the unlock reason: unlocking via
		// surrender retires it from monitoring for good.
		if in.unlockExecuted {
			return nil
		}
		if err := e.registry.UnlockDevice(in.CustomerID, in.TargetDeviceID, nil); err != nil {
			return err
		}
		if err := e.registry.RemoveDevice(in.CustomerID, in.TargetDeviceID); err != nil {
			return err
		}
		in.unlockExecuted = true
		zap.L().Info("device unlocked and removed via surrender",
			zap.String("customer_id", in.CustomerID), zap.String("device_id", in.TargetDeviceID))
	}
	return nil
}

// GenerateVPN produces the optional configuration profile offered on the
// setup flow's download step. macOS profiles need a pincode as removal
// password; if none was generated yet, one is issued here and reused by
// the later mandatory pincode step.
func (e *Engine) GenerateVPN(in *Instance) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.Status != StatusActive || in.Kind != FlowDeviceSetup || in.CurrentStep != setupVPNStep {
		return errors.New("a configuration profile can only be generated on the install step")
	}

	if in.DeviceType == models.DeviceTypeMacOS && in.Pincode == "" {
		code, err := e.provisioner.IssuePincode(in.CustomerID, in.DeviceID, models.PincodePurposeSetup)
		if err != nil {
			return err
		}
		in.Pincode = code
	}

	url, err := e.provisioner.GenerateVPNProfile(in.CustomerID, in.DeviceID, in.DeviceType, in.Pincode)
	if err != nil {
		return err
	}
	in.VPNProfileURL = url
	return nil
}

// complete finishes the flow. Device setup commits the staged device
// (insert when the id is new, update otherwise) and clears staging; the
// unlock flow already did its work on the pincode_display step.
func (e *Engine) complete(in *Instance) error {
	if in.Kind == FlowDeviceSetup {
		exists, err := e.registry.DeviceExists(in.CustomerID, in.DeviceID)
		if err != nil {
			return err
		}
		if exists {
			err = e.registry.UpdateDevice(in.CustomerID, in.DeviceID, map[string]interface{}{
				"name":            in.DeviceName,
				"status":          models.DeviceSetupComplete,
				"audio_guide_url": in.AudioGuideURL,
				"vpn_profile_url": in.VPNProfileURL,
			})
		} else {
			err = e.registry.InsertDevice(in.CustomerID, &models.Device{
				DeviceID:      in.DeviceID,
				Name:          in.DeviceName,
				Type:          in.DeviceType,
				Status:        models.DeviceSetupComplete,
				AddedAt:       time.Now(),
				AudioGuideURL: in.AudioGuideURL,
				VPNProfileURL: in.VPNProfileURL,
			})
		}
		if err != nil {
			// Commit failed: the flow stays on the last step so the
			// customer can retry without regenerating the pincode.
			return err
		}

		in.Pincode = ""
		in.AudioGuideURL = ""
		in.VPNProfileURL = ""
		in.DeviceID = ""
	}

	in.Status = StatusCompleted
	return nil
}

func validateDeviceForm(fields map[string]string) map[string]string {
	errs := map[string]string{}

	name := strings.TrimSpace(fields["device_name"])
	if len(name) < 2 {
		errs["device_name"] = "Device name must be at least 2 characters."
	}
	if !models.ValidDeviceType(fields["device_type"]) {
		errs["device_type"] = "Device type must be iOS or macOS."
	}

	return errs
}
