package main

import (
	"fmt"
	"io"
	"time"

	"github.com/anggasct/stepfsm"
)

// Light is the traffic light state
type Light int

const (
	Green Light = iota
	Yellow
	Red
)

func (l Light) String() string {
	switch l {
	case Green:
		return "Green"
	case Yellow:
		return "Yellow"
	case Red:
		return "Red"
	default:
		return fmt.Sprintf("Light(%d)", int(l))
	}
}

// TrafficLight drives a three state machine by raising one guard flag at a
// time and stepping the machine, the way an external timer would.
type TrafficLight struct {
	machine *stepfsm.StateMachine[Light]
	out     io.Writer
	sleep   func(time.Duration)
	holds   map[Light]time.Duration
	flags   map[Light]bool
}

// NewTrafficLight registers the states and transitions of the light
func NewTrafficLight(cfg Config, out io.Writer, sleep func(time.Duration), opts ...stepfsm.MachineOption[Light]) (*TrafficLight, error) {
	tl := &TrafficLight{
		machine: stepfsm.New[Light](opts...),
		out:     out,
		sleep:   sleep,
		holds: map[Light]time.Duration{
			Green:  cfg.GreenHold,
			Yellow: cfg.YellowHold,
			Red:    cfg.RedHold,
		},
		flags: make(map[Light]bool),
	}

	for _, l := range []Light{Green, Yellow, Red} {
		err := tl.machine.RegisterState(l,
			stepfsm.OnEnter(func() {
				fmt.Fprintf(tl.out, "%s ON\n", l)
				tl.sleep(tl.holds[l])
			}),
			stepfsm.OnLeave(func() {
				fmt.Fprintf(tl.out, "%s OFF\n", l)
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	for _, edge := range [][2]Light{{Green, Yellow}, {Yellow, Red}, {Red, Green}} {
		to := edge[1]
		if err := tl.machine.RegisterTransition(edge[0], to, func() bool { return tl.flags[to] }); err != nil {
			return nil, err
		}
	}

	return tl, nil
}

// Machine exposes the underlying state machine
func (tl *TrafficLight) Machine() *stepfsm.StateMachine[Light] {
	return tl.machine
}

// Run starts at Green and performs the given number of full cycles
func (tl *TrafficLight) Run(cycles int) error {
	if err := tl.machine.Start(Green); err != nil {
		return err
	}
	for i := 0; i < cycles; i++ {
		for _, next := range []Light{Yellow, Red, Green} {
			if err := tl.Advance(next); err != nil {
				return err
			}
		}
	}
	return nil
}

// Advance raises the guard leading to next for a single update step
func (tl *TrafficLight) Advance(next Light) error {
	tl.flags[next] = true
	defer func() { tl.flags[next] = false }()

	changed, err := tl.machine.Update()
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("no transition from %s to %s", tl.machine.CurrentState(), next)
	}
	return nil
}
