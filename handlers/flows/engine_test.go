package flows

import (
	"errors"
	"sync"
	"testing"
	"time"

	"screentime-journey-server/models"
)

type fakeBackend struct {
	devices map[string]*models.Device

	pincodesIssued int
	audioCalls     int
	vpnCalls       int
	unlockCalls    int
	removeCalls    int
	insertCalls    int
	updateCalls    int

	failAudio   bool
	failUnlock  bool
	failInsert  bool
	approve     bool
	feedback    string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{devices: map[string]*models.Device{}, approve: true}
}

func (f *fakeBackend) CountDevices(string) (int, error) { return len(f.devices), nil }

func (f *fakeBackend) DeviceExists(_, deviceID string) (bool, error) {
	_, ok := f.devices[deviceID]
	return ok, nil
}

func (f *fakeBackend) InsertDevice(_ string, d *models.Device) error {
	if f.failInsert {
		return errors.New("insert failed")
	}
	f.insertCalls++
	f.devices[d.DeviceID] = d
	return nil
}

func (f *fakeBackend) UpdateDevice(_, deviceID string, _ map[string]interface{}) error {
	f.updateCalls++
	return nil
}

func (f *fakeBackend) UnlockDevice(_, deviceID string, _ *int) error {
	if f.failUnlock {
		return errors.New("unlock failed")
	}
	f.unlockCalls++
	return nil
}

func (f *fakeBackend) RemoveDevice(_, deviceID string) error {
	f.removeCalls++
	delete(f.devices, deviceID)
	return nil
}

func (f *fakeBackend) IssuePincode(_, _, _ string) (string, error) {
	f.pincodesIssued++
	return "1234", nil
}

func (f *fakeBackend) GenerateAudioGuide(_, _, _ string) (string, error) {
	if f.failAudio {
		return "", errors.New("tts backend down")
	}
	f.audioCalls++
	return "https://assets.example.com/guide.mp3", nil
}

func (f *fakeBackend) GenerateVPNProfile(_, _, _, _ string) (string, error) {
	f.vpnCalls++
	return "/vpn_profile/token", nil
}

func (f *fakeBackend) ValidateSurrender(_, _ string) (bool, string, error) {
	return f.approve, f.feedback, nil
}

func newTestEngine(f *fakeBackend) *Engine { return NewEngine(f, f) }

func validForm() map[string]string {
	return map[string]string{"device_name": "My iPhone", "device_type": models.DeviceTypeIOS}
}

func startSetup(t *testing.T, e *Engine) *Instance {
	t.Helper()
	in, err := e.Start("cust-1", FlowDeviceSetup, "")
	if err != nil {
		t.Fatalf("failed to start setup flow: %v", err)
	}
	return in
}

func TestSetupFlow_RefusedAtDeviceCap(t *testing.T) {
	f := newFakeBackend()
	for i := 0; i < models.MaxDevicesPerCustomer; i++ {
		f.devices[string(rune('a'+i))] = &models.Device{}
	}
	e := newTestEngine(f)

	if _, err := e.Start("cust-1", FlowDeviceSetup, ""); err == nil {
		t.Fatal("expected setup flow to be refused at the device cap")
	}
}

func TestSetupFlow_FormValidationBlocksAdvance(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	in := startSetup(t, e)

	err := e.Next(in, map[string]string{"device_name": " x ", "device_type": "Android"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if in.CurrentStep != 1 {
		t.Fatalf("expected to stay on step 1, got %d", in.CurrentStep)
	}
	if in.FieldErrors["device_name"] == "" || in.FieldErrors["device_type"] == "" {
		t.Fatalf("expected field errors for both fields, got %v", in.FieldErrors)
	}
}

func TestSetupFlow_ValidFormAdvances(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	in := startSetup(t, e)

	if err := e.Next(in, validForm()); err != nil {
		t.Fatalf("expected advance, got %v", err)
	}
	if in.CurrentStep != 2 {
		t.Fatalf("expected step 2, got %d", in.CurrentStep)
	}
	if in.DeviceName != "My iPhone" || in.DeviceType != models.DeviceTypeIOS {
		t.Fatalf("staging not recorded: %+v", in)
	}
}

func TestSetupFlow_PincodeAndAudioGeneratedOnceOnStepFour(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, validForm()) // -> 2
	mustNext(t, e, in, nil)         // -> 3
	mustNext(t, e, in, nil)         // -> 4, triggers generation

	if in.CurrentStep != 4 {
		t.Fatalf("expected step 4, got %d", in.CurrentStep)
	}
	if in.Pincode != "1234" || in.AudioGuideURL == "" {
		t.Fatalf("expected pincode and audio guide staged, got %+v", in)
	}
	if f.pincodesIssued != 1 || f.audioCalls != 1 {
		t.Fatalf("expected one pincode and one audio call, got %d/%d", f.pincodesIssued, f.audioCalls)
	}

	// Going back and forward again must not regenerate.
	mustPrev(t, e, in)
	mustNext(t, e, in, nil)
	if f.pincodesIssued != 1 || f.audioCalls != 1 {
		t.Fatalf("regeneration on re-entry: %d pincodes, %d audio calls", f.pincodesIssued, f.audioCalls)
	}
}

func TestSetupFlow_AudioFailureBlocksAdvanceAndKeepsPincode(t *testing.T) {
	f := newFakeBackend()
	f.failAudio = true
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, validForm())
	mustNext(t, e, in, nil)

	if err := e.Next(in, nil); err == nil {
		t.Fatal("expected advance to fail while the TTS backend is down")
	}
	if in.CurrentStep != 3 {
		t.Fatalf("expected to stay on step 3, got %d", in.CurrentStep)
	}
	if in.Pincode != "1234" {
		t.Fatalf("expected the issued pincode to survive the failure, got %q", in.Pincode)
	}

	// Manual retry succeeds without reissuing the pincode.
	f.failAudio = false
	mustNext(t, e, in, nil)
	if in.CurrentStep != 4 {
		t.Fatalf("expected step 4 after retry, got %d", in.CurrentStep)
	}
	if f.pincodesIssued != 1 {
		t.Fatalf("expected the pincode to be issued once, got %d", f.pincodesIssued)
	}
}

func TestSetupFlow_MacOSVPNIssuesPincodeReusedLater(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, map[string]string{"device_name": "My Mac", "device_type": models.DeviceTypeMacOS})
	mustNext(t, e, in, nil) // -> 3

	if err := e.GenerateVPN(in); err != nil {
		t.Fatalf("profile generation failed: %v", err)
	}
	if in.VPNProfileURL == "" || in.Pincode == "" {
		t.Fatalf("expected profile url and pincode staged, got %+v", in)
	}
	if f.pincodesIssued != 1 {
		t.Fatalf("expected one pincode for the macOS profile, got %d", f.pincodesIssued)
	}

	mustNext(t, e, in, nil) // -> 4, must reuse the pincode
	if f.pincodesIssued != 1 {
		t.Fatalf("step 4 reissued the pincode: %d issued", f.pincodesIssued)
	}
}

func TestSetupFlow_VPNOnlyAllowedOnInstallStep(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	in := startSetup(t, e)

	if err := e.GenerateVPN(in); err == nil {
		t.Fatal("expected profile generation to be refused on step 1")
	}
}

func TestSetupFlow_CompletionCommitsDeviceAndClearsStaging(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, validForm())
	for in.CurrentStep < in.TotalSteps {
		mustNext(t, e, in, nil)
	}
	mustNext(t, e, in, nil) // completes

	if in.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", in.Status)
	}
	if f.insertCalls != 1 {
		t.Fatalf("expected one insert, got %d", f.insertCalls)
	}
	if in.Pincode != "" || in.AudioGuideURL != "" || in.DeviceID != "" {
		t.Fatalf("expected staging cleared, got %+v", in)
	}
}

func TestSetupFlow_FailedCommitPreservesState(t *testing.T) {
	f := newFakeBackend()
	f.failInsert = true
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, validForm())
	for in.CurrentStep < in.TotalSteps {
		mustNext(t, e, in, nil)
	}

	if err := e.Next(in, nil); err == nil {
		t.Fatal("expected commit failure to surface")
	}
	if in.Status != StatusActive {
		t.Fatalf("expected flow still active, got %s", in.Status)
	}
	if in.Pincode == "" {
		t.Fatal("expected the pincode to survive the failed commit")
	}

	// Retry without regenerating.
	f.failInsert = false
	issued := f.pincodesIssued
	mustNext(t, e, in, nil)
	if in.Status != StatusCompleted {
		t.Fatalf("expected completion on retry, got %s", in.Status)
	}
	if f.pincodesIssued != issued {
		t.Fatal("retrying the commit regenerated the pincode")
	}
}

func TestPrev_RejectedBelowFirstStep(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	in := startSetup(t, e)

	if err := e.Prev(in); err == nil {
		t.Fatal("expected prev to be rejected on step 1")
	}
}

func TestCancel_NoPersistence(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startSetup(t, e)

	mustNext(t, e, in, validForm())
	e.Cancel(in)

	if in.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", in.Status)
	}
	if f.insertCalls != 0 || f.updateCalls != 0 {
		t.Fatal("cancel must not persist anything")
	}
	if err := e.Next(in, nil); !errors.Is(err, ErrFlowFinished) {
		t.Fatalf("expected ErrFlowFinished after cancel, got %v", err)
	}
}

func startUnlock(t *testing.T, e *Engine, f *fakeBackend) *Instance {
	t.Helper()
	f.devices["dev-1"] = &models.Device{DeviceID: "dev-1"}
	in, err := e.Start("cust-1", FlowDeviceUnlock, "dev-1")
	if err != nil {
		t.Fatalf("failed to start unlock flow: %v", err)
	}
	return in
}

func TestUnlockFlow_RequiresRecording(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startUnlock(t, e, f)

	mustNext(t, e, in, nil) // -> 2 (surrender)

	err := e.Next(in, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error without a recording, got %v", err)
	}
	if in.CurrentStep != 2 {
		t.Fatalf("expected to stay on the surrender step, got %d", in.CurrentStep)
	}
}

func TestUnlockFlow_RejectionStaysWithFeedback(t *testing.T) {
	f := newFakeBackend()
	f.approve = false
	f.feedback = "Please speak the full statement."
	e := newTestEngine(f)
	in := startUnlock(t, e, f)

	mustNext(t, e, in, nil)
	if err := e.Next(in, map[string]string{"recording_url": "blob://rec"}); err != nil {
		t.Fatalf("a rejection is not an error: %v", err)
	}
	if in.CurrentStep != 2 {
		t.Fatalf("expected to stay on the surrender step, got %d", in.CurrentStep)
	}
	if in.SurrenderFeedback != f.feedback {
		t.Fatalf("expected validator feedback, got %q", in.SurrenderFeedback)
	}
	if f.unlockCalls != 0 || f.removeCalls != 0 {
		t.Fatal("rejection must not touch the device")
	}
}

func TestUnlockFlow_ApprovalUnlocksAndRemovesExactlyOnce(t *testing.T) {
	f := newFakeBackend()
	e := newTestEngine(f)
	in := startUnlock(t, e, f)

	mustNext(t, e, in, nil)
	mustNext(t, e, in, map[string]string{"recording_url": "blob://rec"}) // -> 3

	if in.CurrentStep != 3 {
		t.Fatalf("expected the pincode step, got %d", in.CurrentStep)
	}
	if in.UnlockPincode == "" {
		t.Fatal("expected an unlock pincode after approval")
	}
	if f.unlockCalls != 1 || f.removeCalls != 1 {
		t.Fatalf("expected exactly one unlock and one removal, got %d/%d", f.unlockCalls, f.removeCalls)
	}
	if _, still := f.devices["dev-1"]; still {
		t.Fatal("expected the device gone from the registry")
	}

	// Re-entering the pincode step must not re-trigger the side effect.
	mustPrev(t, e, in)
	mustNext(t, e, in, map[string]string{"recording_url": "blob://rec"})
	if f.unlockCalls != 1 || f.removeCalls != 1 {
		t.Fatalf("side effect ran twice: %d unlocks, %d removals", f.unlockCalls, f.removeCalls)
	}

	mustNext(t, e, in, nil) // -> 4 (confirmation)
	mustNext(t, e, in, nil) // completes
	if in.Status != StatusCompleted {
		t.Fatalf("expected completion, got %s", in.Status)
	}
	if f.unlockCalls != 1 || f.removeCalls != 1 {
		t.Fatal("completion must not repeat the unlock")
	}
}

func TestUnlockFlow_FailedUnlockKeepsStepAndAllowsRetry(t *testing.T) {
	f := newFakeBackend()
	f.failUnlock = true
	e := newTestEngine(f)
	in := startUnlock(t, e, f)

	mustNext(t, e, in, nil)
	if err := e.Next(in, map[string]string{"recording_url": "blob://rec"}); err == nil {
		t.Fatal("expected the unlock failure to surface")
	}
	if in.CurrentStep != 2 {
		t.Fatalf("expected to stay on the surrender step, got %d", in.CurrentStep)
	}

	f.failUnlock = false
	mustNext(t, e, in, map[string]string{"recording_url": "blob://rec"})
	if f.unlockCalls != 1 || f.removeCalls != 1 {
		t.Fatalf("expected retry to perform the unlock once, got %d/%d", f.unlockCalls, f.removeCalls)
	}
}

// slowUnlockBackend stretches the unlock call so two requests can overlap.
type slowUnlockBackend struct {
	*fakeBackend
	delay time.Duration
}

func (s *slowUnlockBackend) UnlockDevice(customerID, deviceID string, minutes *int) error {
	time.Sleep(s.delay)
	return s.fakeBackend.UnlockDevice(customerID, deviceID, minutes)
}

func TestUnlockFlow_ConcurrentAdvancesRunSideEffectOnce(t *testing.T) {
	f := newFakeBackend()
	slow := &slowUnlockBackend{fakeBackend: f, delay: 20 * time.Millisecond}
	e := NewEngine(slow, f)
	f.devices["dev-1"] = &models.Device{DeviceID: "dev-1"}

	in, err := e.Start("cust-1", FlowDeviceUnlock, "dev-1")
	if err != nil {
		t.Fatalf("failed to start unlock flow: %v", err)
	}
	mustNext(t, e, in, nil) // -> 2 (surrender)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Next(in, map[string]string{"recording_url": "blob://rec"})
		}()
	}
	wg.Wait()

	if f.unlockCalls != 1 || f.removeCalls != 1 {
		t.Fatalf("concurrent advances ran the side effect %d/%d times", f.unlockCalls, f.removeCalls)
	}
}

func TestUnlockFlow_UnknownDeviceRefused(t *testing.T) {
	e := newTestEngine(newFakeBackend())
	if _, err := e.Start("cust-1", FlowDeviceUnlock, "missing"); err == nil {
		t.Fatal("expected unlock flow start to fail for an unknown device")
	}
}

func mustNext(t *testing.T, e *Engine, in *Instance, fields map[string]string) {
	t.Helper()
	if err := e.Next(in, fields); err != nil {
		t.Fatalf("advance from step %d failed: %v", in.CurrentStep, err)
	}
}

func mustPrev(t *testing.T, e *Engine, in *Instance) {
	t.Helper()
	if err := e.Prev(in); err != nil {
		t.Fatalf("prev from step %d failed: %v", in.CurrentStep, err)
	}
}
