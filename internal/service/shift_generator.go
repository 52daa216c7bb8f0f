package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

var (
	ErrBlockDaysRequired     = errors.New("You must specify either working days or a pattern (days on and days off).")
	ErrBlockTooLong          = fmt.Errorf("A block may span at most %d days.", model.MaxWorkingDays)
	ErrInvalidShiftTime      = errors.New("Enter a valid time (HH:MM).")
	ErrEmptyCycle            = errors.New("The pattern blocks cover zero days.")
	ErrPatternStartNotMonday = errors.New("A pattern with weekday blocks must start on a Monday.")
)

const shiftTimeLayout = "15:04"

// BuildWorkingDays turns the block input into its bitmap. Selected weekdays
// (1 = Monday .. 7 = Sunday) win over days on/off when both are given.
func BuildWorkingDays(selectedDays []int, daysOn, daysOff *int) (string, model.IntArray, error) {
	if len(selectedDays) > 0 {
		days := make(model.IntArray, 7)
		for _, d := range selectedDays {
			if d < 1 || d > 7 {
				return "", nil, fmt.Errorf("invalid weekday %d: %w", d, ErrBlockDaysRequired)
			}
			days[d-1] = 1
		}
		return model.BlockKindWeekly, days, nil
	}

	if daysOn == nil || daysOff == nil {
		return "", nil, ErrBlockDaysRequired
	}
	on, off := *daysOn, *daysOff
	if on < 1 || off < 1 || on > model.MaxDaysOnOff || off > model.MaxDaysOnOff {
		return "", nil, ErrBlockDaysRequired
	}
	days := make(model.IntArray, 0, on+off)
	for i := 0; i < on; i++ {
		days = append(days, 1)
	}
	for i := 0; i < off; i++ {
		days = append(days, 0)
	}
	return model.BlockKindCycle, days, nil
}

// ComputeDuration returns minutes from start to end; an end at or before
// the start is on the next day.
func ComputeDuration(start, end string) (int, error) {
	s, err := time.Parse(shiftTimeLayout, start)
	if err != nil {
		return 0, ErrInvalidShiftTime
	}
	e, err := time.Parse(shiftTimeLayout, end)
	if err != nil {
		return 0, ErrInvalidShiftTime
	}
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}
	return int(e.Sub(s).Minutes()), nil
}

// BuildBlock validates one block request.
func BuildBlock(req *dto.ShiftBlockRequest) (model.ShiftBlock, error) {
	kind, days, err := BuildWorkingDays(req.SelectedDays, req.DaysOn, req.DaysOff)
	if err != nil {
		return model.ShiftBlock{}, err
	}
	if len(days) > model.MaxWorkingDays {
		return model.ShiftBlock{}, ErrBlockTooLong
	}

	duration, err := ComputeDuration(req.StartTime, req.EndTime)
	if err != nil {
		return model.ShiftBlock{}, err
	}
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	return model.ShiftBlock{
		Kind:            kind,
		WorkingDays:     days,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: duration,
		Order:           req.Order,
	}, nil
}

// BuildBlocks validates every block request and orders the result.
func BuildBlocks(reqs []dto.ShiftBlockRequest) ([]model.ShiftBlock, error) {
	blocks := make([]model.ShiftBlock, 0, len(reqs))
	for i := range reqs {
		b, err := BuildBlock(&reqs[i])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		blocks = append(blocks, b)
	}
	sortBlocks(blocks)
	return blocks, nil
}

func sortBlocks(blocks []model.ShiftBlock) {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })
}

// ValidatePattern checks the rules that span blocks.
func ValidatePattern(start model.Date, blocks []model.ShiftBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	if cycleLength(blocks) == 0 {
		return ErrEmptyCycle
	}
	for i := range blocks {
		if blocks[i].Kind == model.BlockKindWeekly && start.Weekday() != time.Monday {
			return ErrPatternStartNotMonday
		}
	}
	return nil
}

func cycleLength(blocks []model.ShiftBlock) int {
	n := 0
	for i := range blocks {
		n += len(blocks[i].WorkingDays)
	}
	return n
}

// HorizonStart is 1 January of the year of now. Days before it are never
// generated, however old the pattern start date is.
func HorizonStart(now time.Time) model.Date {
	return model.Date{Time: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// HorizonEnd is 31 December of the year that is years after now.
func HorizonEnd(now time.Time, years int) model.Date {
	return model.Date{Time: time.Date(now.Year()+years, time.December, 31, 0, 0, 0, 0, time.UTC)}
}

// Occurrence one working day of a block.
type Occurrence struct {
	Block *model.ShiftBlock
	Date  model.Date
}

// Expand walks the blocks in order from start, each block taking as many
// days as its bitmap is long, and repeats the cycle until to. Only the
// working days inside [from, to] are returned.
func Expand(start model.Date, blocks []model.ShiftBlock, from, to model.Date) ([]Occurrence, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	cycle := cycleLength(blocks)
	if cycle == 0 {
		return nil, ErrEmptyCycle
	}
	if to.Before(start.Time) || to.Before(from.Time) {
		return nil, nil
	}

	ordered := make([]model.ShiftBlock, len(blocks))
	copy(ordered, blocks)
	sortBlocks(ordered)

	// jump over whole cycles that end before from
	cursor := start
	if from.After(start.Time) {
		skip := daysBetween(start, from) / cycle
		cursor = start.AddDays(skip * cycle)
	}

	var out []Occurrence
	for !cursor.After(to.Time) {
		for i := range ordered {
			block := &ordered[i]
			for _, working := range block.WorkingDays {
				if cursor.After(to.Time) {
					return out, nil
				}
				if working == 1 && !cursor.Before(from.Time) {
					out = append(out, Occurrence{Block: block, Date: cursor})
				}
				cursor = cursor.AddDays(1)
			}
		}
	}
	return out, nil
}

// daysBetween counts in Unix seconds, time.Sub saturates after 292 years.
func daysBetween(a, b model.Date) int {
	return int((b.Unix() - a.Unix()) / 86400)
}
