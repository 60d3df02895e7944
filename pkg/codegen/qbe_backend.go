package codegen

import (
	"fmt"
	"strings"

	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/ir"
)

type qbeBackend struct{}

func NewQBEBackend() Backend { return &qbeBackend{} }

// GenerateIR serializes the program into QBE's textual IL.
func (b *qbeBackend) GenerateIR(prog *ir.Program, cfg *config.Config) (string, error) {
	var sb strings.Builder

	for _, s := range prog.Strings {
		sb.WriteString(fmt.Sprintf("data $%s = { b %s, b 0 }\n", s.Label, quoteQBE(s.Value)))
	}
	if len(prog.Strings) > 0 {
		sb.WriteByte('\n')
	}

	for _, f := range prog.Funcs {
		if err := writeFunc(&sb, f); err != nil {
			return "", err
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func writeFunc(sb *strings.Builder, f *ir.Func) error {
	if f.IsExported {
		sb.WriteString("export ")
	}
	sb.WriteString("function ")
	if f.ReturnType != ir.TypeNone {
		sb.WriteString(abiType(f.ReturnType) + " ")
	}
	sb.WriteString("$" + f.Name + "(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(abiType(f.ParamTypes[i]) + " " + p.String())
	}
	sb.WriteString(") {\n")

	for _, block := range f.Blocks {
		sb.WriteString("@" + block.Label + "\n")
		for _, instr := range block.Instructions {
			line, err := formatInstruction(instr)
			if err != nil {
				return fmt.Errorf("function $%s, block @%s: %w", f.Name, block.Label, err)
			}
			sb.WriteString("\t" + line + "\n")
		}
	}
	sb.WriteString("}\n")
	return nil
}

func formatInstruction(instr *ir.Instruction) (string, error) {
	switch instr.Op {
	case ir.OpAlloc:
		return fmt.Sprintf("%s =l alloc%d %s", instr.Result, instr.Align, value(instr.Args[0])), nil
	case ir.OpLoad:
		return fmt.Sprintf("%s =%s %s %s",
			instr.Result, baseType(instr.Typ), loadOp(instr.Typ), value(instr.Args[0])), nil
	case ir.OpStore:
		return fmt.Sprintf("%s %s, %s", storeOp(instr.Typ), value(instr.Args[0]), value(instr.Args[1])), nil
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv:
		return fmt.Sprintf("%s =%s %s %s, %s",
			instr.Result, baseType(instr.Typ), arithOp(instr.Op), value(instr.Args[0]), value(instr.Args[1])), nil
	case ir.OpNeg:
		return fmt.Sprintf("%s =%s neg %s", instr.Result, baseType(instr.Typ), value(instr.Args[0])), nil
	case ir.OpCEq, ir.OpCNe, ir.OpCLt, ir.OpCLe, ir.OpCGt, ir.OpCGe:
		if len(instr.ArgTypes) != 1 {
			return "", fmt.Errorf("comparison without an operand class")
		}
		op, err := compareOp(instr.Op, instr.ArgTypes[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s =w %s %s, %s", instr.Result, op, value(instr.Args[0]), value(instr.Args[1])), nil
	case ir.OpJmp:
		return "jmp " + value(instr.Args[0]), nil
	case ir.OpJnz:
		return fmt.Sprintf("jnz %s, %s, %s", value(instr.Args[0]), value(instr.Args[1]), value(instr.Args[2])), nil
	case ir.OpRet:
		if len(instr.Args) == 0 {
			return "ret", nil
		}
		return "ret " + value(instr.Args[0]), nil
	case ir.OpCall:
		var args strings.Builder
		for i, a := range instr.Args[1:] {
			if i > 0 {
				args.WriteString(", ")
			}
			args.WriteString(abiType(instr.ArgTypes[i]) + " " + value(a))
		}
		call := fmt.Sprintf("call %s(%s)", value(instr.Args[0]), args.String())
		if instr.Result != nil {
			return fmt.Sprintf("%s =%s %s", instr.Result, baseType(instr.Typ), call), nil
		}
		return call, nil
	case ir.OpPhi:
		var pairs []string
		for i := 0; i+1 < len(instr.Args); i += 2 {
			pairs = append(pairs, value(instr.Args[i])+" "+value(instr.Args[i+1]))
		}
		return fmt.Sprintf("%s =%s phi %s", instr.Result, baseType(instr.Typ), strings.Join(pairs, ", ")), nil
	case ir.OpCopy:
		return fmt.Sprintf("%s =%s copy %s", instr.Result, baseType(instr.Typ), value(instr.Args[0])), nil
	}
	return "", fmt.Errorf("unhandled op %d", instr.Op)
}

func value(v ir.Value) string {
	if fc, ok := v.(*ir.FloatConst); ok {
		if fc.Typ == ir.TypeS {
			return fmt.Sprintf("s_%g", fc.Value)
		}
		return fmt.Sprintf("d_%g", fc.Value)
	}
	return v.String()
}

// abiType is the class used in signatures; sub-word values pass with
// their extended class.
func abiType(t ir.Type) string {
	switch t {
	case ir.TypeB:
		return "b"
	case ir.TypeH:
		return "h"
	case ir.TypeW:
		return "w"
	case ir.TypeL:
		return "l"
	case ir.TypeS:
		return "s"
	case ir.TypeD:
		return "d"
	case ir.TypeSB:
		return "sb"
	case ir.TypeUB:
		return "ub"
	case ir.TypeSH:
		return "sh"
	case ir.TypeUH:
		return "uh"
	}
	return "l"
}

func baseType(t ir.Type) string { return abiType(ir.BaseType(t)) }

func loadOp(t ir.Type) string {
	switch t {
	case ir.TypeSB:
		return "loadsb"
	case ir.TypeUB, ir.TypeB:
		return "loadub"
	case ir.TypeSH:
		return "loadsh"
	case ir.TypeUH, ir.TypeH:
		return "loaduh"
	case ir.TypeW:
		return "loadw"
	case ir.TypeS:
		return "loads"
	case ir.TypeD:
		return "loadd"
	}
	return "loadl"
}

func storeOp(t ir.Type) string {
	switch t {
	case ir.TypeB, ir.TypeSB, ir.TypeUB:
		return "storeb"
	case ir.TypeH, ir.TypeSH, ir.TypeUH:
		return "storeh"
	case ir.TypeW:
		return "storew"
	case ir.TypeS:
		return "stores"
	case ir.TypeD:
		return "stored"
	}
	return "storel"
}

func arithOp(op ir.Op) string {
	switch op {
	case ir.OpAdd:
		return "add"
	case ir.OpSub:
		return "sub"
	case ir.OpMul:
		return "mul"
	}
	return "div"
}

func compareOp(op ir.Op, class ir.Type) (string, error) {
	suffix := abiType(ir.BaseType(class))
	isFloat := class.IsFloat()
	switch op {
	case ir.OpCEq:
		return "ceq" + suffix, nil
	case ir.OpCNe:
		return "cne" + suffix, nil
	}
	sign := "s"
	if isFloat {
		sign = ""
	}
	switch op {
	case ir.OpCLt:
		return "c" + sign + "lt" + suffix, nil
	case ir.OpCLe:
		return "c" + sign + "le" + suffix, nil
	case ir.OpCGt:
		return "c" + sign + "gt" + suffix, nil
	case ir.OpCGe:
		return "c" + sign + "ge" + suffix, nil
	}
	return "", fmt.Errorf("op %d is not a comparison", op)
}

func quoteQBE(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range []byte(s) {
		switch b {
		case '"':
			sb.WriteString("\\\"")
		case '\\':
			sb.WriteString("\\\\")
		default:
			sb.WriteByte(b)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
