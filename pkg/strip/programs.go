package strip

import (
	"errors"
	"fmt"
	"math"
)

// DefaultProgramName names the single program.
const DefaultProgramName = "Default"

// MaxProgramNameLength is the longest program name in bytes that fits the
// saved state's length prefix.
const MaxProgramNameLength = math.MaxUint16

// ErrProgramNameTooLong is returned for names over MaxProgramNameLength.
var ErrProgramNameTooLong = errors.New("program name too long")

// NumPrograms returns the number of programs. Some hosts misbehave with
// zero, so there is always exactly one.
func (p *Processor) NumPrograms() int { return 1 }

// CurrentProgram returns the selected program index.
func (p *Processor) CurrentProgram() int { return 0 }

// SetCurrentProgram selects a program. Only index 0 exists.
func (p *Processor) SetCurrentProgram(index int) {}

// ProgramName returns the name of the program at index, or "" when there
// is no such program.
func (p *Processor) ProgramName(index int) string {
	if index != 0 {
		return ""
	}
	p.programMu.Lock()
	defer p.programMu.Unlock()
	return p.programName
}

// ChangeProgramName renames the program at index. The name is left
// unchanged on error.
func (p *Processor) ChangeProgramName(index int, name string) error {
	if index != 0 {
		return fmt.Errorf("no program at index %d", index)
	}
	if len(name) > MaxProgramNameLength {
		return fmt.Errorf("%w: %d bytes", ErrProgramNameTooLong, len(name))
	}
	p.programMu.Lock()
	p.programName = name
	p.programMu.Unlock()
	return nil
}
