package core

// fakeDriver records what the controller asks of the hardware
type fakeDriver struct {
	attached  bool
	pin       PulsePin
	attachErr error

	writes   []uint16 // Writes while attached
	inert    int      // Writes while detached
	attaches int
	detaches int
}

func (d *fakeDriver) Attach(pin PulsePin) error {
	d.attaches++
	if d.attachErr != nil {
		return d.attachErr
	}
	d.attached = true
	d.pin = pin
	return nil
}

func (d *fakeDriver) Detach() {
	d.detaches++
	d.attached = false
}

func (d *fakeDriver) WritePulseWidth(us uint16) {
	if !d.attached {
		d.inert++
		return
	}
	d.writes = append(d.writes, us)
}

type testRig struct {
	servo  *LazyServo
	driver *fakeDriver
	clock  *ManualClock
	queue  *TimerQueue
}

func newTestRig(cfg Config) *testRig {
	driver := &fakeDriver{}
	clock := NewManualClock(0)
	queue := NewTimerQueue()
	servo := NewLazyServo(15, driver, NewTrigger(queue, clock), clock, cfg)
	return &testRig{servo: servo, driver: driver, clock: clock, queue: queue}
}

// step advances the clock and polls once
func (r *testRig) step(us uint64) {
	r.clock.Advance(us)
	r.servo.Update()
}
