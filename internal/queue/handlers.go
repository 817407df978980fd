package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nattery/edge-bridge/internal/errs"
)

// execute runs the handler for cmd.Kind against the bound Accessor. It is
// called from its own goroutine by dispatch, racing the command's
// timeout. Every call it makes into the accessor carries ctx, but a
// cancellation only cuts short a wait (a transport retry delay, the
// read_all inter-register delay): a Modbus call already issued runs to
// completion, and the handler's later calls (the remaining read_all
// registers, the second schedule write) are still issued.
func (q *Queue) execute(ctx context.Context, cmd *Command) (any, error) {
	switch cmd.Kind {
	case ReadRegister:
		return q.handleReadRegister(ctx, cmd.Args)
	case WriteRegister:
		return q.handleWriteRegister(ctx, cmd.Args)
	case ReadAll:
		return q.handleReadAll(ctx)
	case SetChargeMode:
		return q.handleSetEnable(ctx, "enable_charge", cmd.Args)
	case SetDischargeMode:
		return q.handleSetEnable(ctx, "enable_discharge", cmd.Args)
	case SetChargePower:
		return q.handleSetPower(ctx, "charge_power_limit", cmd.Args)
	case SetDischargePower:
		return q.handleSetPower(ctx, "discharge_power_limit", cmd.Args)
	case SetChargeSchedule:
		return q.handleSetSchedule(ctx, "charge", cmd.Args)
	case SetDischargeSchedule:
		return q.handleSetSchedule(ctx, "discharge", cmd.Args)
	default:
		return nil, &errs.UnknownCommandError{Kind: string(cmd.Kind)}
	}
}

func (q *Queue) handleReadRegister(ctx context.Context, args Args) (any, error) {
	if args.Register == "" {
		return nil, &errs.UnknownRegisterError{Name: "(empty)"}
	}
	value, err := q.accessor.ReadByName(ctx, args.Register)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (q *Queue) handleWriteRegister(ctx context.Context, args Args) (any, error) {
	if args.Register == "" {
		return nil, &errs.UnknownRegisterError{Name: "(empty)"}
	}
	ok, err := q.accessor.WriteByName(ctx, args.Register, args.Value)
	if err != nil {
		return nil, err
	}
	return ok, nil
}

func (q *Queue) handleReadAll(ctx context.Context) (any, error) {
	values := q.accessor.ReadAll(ctx, func() {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
		}
	})
	return values, nil
}

func (q *Queue) handleSetEnable(ctx context.Context, register string, args Args) (any, error) {
	value := 0.0
	if args.Enable {
		value = 1.0
	}
	ok, err := q.accessor.WriteByName(ctx, register, value)
	if err != nil {
		return nil, err
	}
	return ok, nil
}

func (q *Queue) handleSetPower(ctx context.Context, register string, args Args) (any, error) {
	ok, err := q.accessor.WriteByName(ctx, register, args.Power)
	if err != nil {
		return nil, err
	}
	return ok, nil
}

// handleSetSchedule writes the start and end registers for a charge or
// discharge schedule slot (1 or 2). The two writes are not atomic on the
// wire (a failure on the second write leaves the first in place), but
// they run back to back within the same command, so no other command
// touches the bus between them.
func (q *Queue) handleSetSchedule(ctx context.Context, kind string, args Args) (any, error) {
	slot := args.Slot
	if slot != 1 && slot != 2 {
		return nil, &errs.UnknownRegisterError{Name: fmt.Sprintf("%s_time_%d_start", kind, slot)}
	}

	startReg := fmt.Sprintf("%s_time_%d_start", kind, slot)
	endReg := fmt.Sprintf("%s_time_%d_end", kind, slot)

	if _, err := q.accessor.WriteByName(ctx, startReg, float64(args.Start)); err != nil {
		return nil, err
	}
	ok, err := q.accessor.WriteByName(ctx, endReg, float64(args.End))
	if err != nil {
		return nil, err
	}
	return ok, nil
}
