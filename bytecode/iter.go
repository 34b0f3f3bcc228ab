package bytecode

import "github.com/HiveWang/bionic/op"

// InstructionIter steps through a Code object one instruction at a time,
// grouping each opcode with its operand words. The operand count comes from
// the op.Info table, so the iterator never needs to know what an opcode
// means.
type InstructionIter struct {
	code *Code
	pos  int
}

// NewInstructionIter creates an iterator positioned at the first instruction.
func NewInstructionIter(code *Code) *InstructionIter {
	return &InstructionIter{code: code}
}

// Next returns the next opcode together with its operands, or false once
// the instruction stream is exhausted.
func (it *InstructionIter) Next() ([]op.Code, bool) {
	if it.pos >= it.code.InstructionCount() {
		return nil, false
	}
	opcode := it.code.InstructionAt(it.pos)
	it.pos++

	words := []op.Code{opcode}
	for j := 0; j < op.GetInfo(opcode).OperandCount; j++ {
		words = append(words, it.code.InstructionAt(it.pos))
		it.pos++
	}
	return words, true
}

// All drains the iterator, returning every remaining instruction.
func (it *InstructionIter) All() [][]op.Code {
	var instructions [][]op.Code
	for {
		words, ok := it.Next()
		if !ok {
			return instructions
		}
		instructions = append(instructions, words)
	}
}
