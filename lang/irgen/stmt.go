package irgen

import (
	"strconv"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/ice"
)

// genBlock lowers a brace-delimited block: push a fresh scope, lower every
// item in order up to the first one that terminates the current basic
// block (the rest are unreachable and not lowered), pop the scope.
func (e *Emitter) genBlock(b *ast.Block) {
	e.ctx.PushScope()
	for _, item := range b.Items {
		if e.terminated {
			break
		}
		e.genBlockItem(item)
	}
	e.ctx.PopScope()
}

func (e *Emitter) genBlockItem(item ast.BlockItem) {
	switch it := item.(type) {
	case *ast.ConstDecl:
		e.genLocalConstDecl(it)
	case *ast.VarDecl:
		e.genLocalVarDecl(it)
	case ast.Stmt:
		e.genStmt(it)
	default:
		ice.Raise("irgen: unexpected block item %T", item)
	}
}

func (e *Emitter) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		v := e.genExp(st.Exp)
		addr, full := e.lvalAddr(st.LVal)
		if !full {
			ice.Raise("irgen: assignment target is not fully indexed")
		}
		e.emitf("  store %s, %s", v, addr)

	case *ast.ExpStmt:
		if st.Exp != nil {
			e.genExp(st.Exp)
		}

	case *ast.BlockStmt:
		e.genBlock(st.Block)

	case *ast.IfStmt:
		e.genIf(st)

	case *ast.WhileStmt:
		e.genWhile(st)

	case *ast.BreakStmt:
		id := e.ctx.CurrentLoop()
		e.emitf("  jump %%while_end_%d", id)
		e.terminated = true

	case *ast.ContinueStmt:
		id := e.ctx.CurrentLoop()
		e.emitf("  jump %%while_cond_%d", id)
		e.terminated = true

	case *ast.ReturnStmt:
		if st.Exp == nil {
			e.emitf("  ret")
		} else {
			v := e.genExp(st.Exp)
			e.emitf("  ret %s", v)
		}
		e.terminated = true

	default:
		ice.Raise("irgen: unexpected statement %T", s)
	}
}

func (e *Emitter) genIf(s *ast.IfStmt) {
	id := e.ctx.NextIfID()
	cond := e.genExp(s.Cond)
	thenLabel := labelName("if_then", id)
	elseLabel := labelName("if_else", id)
	endLabel := labelName("if_end", id)

	target2 := endLabel
	if s.Else != nil {
		target2 = elseLabel
	}
	e.emitf("  br %s, %s, %s", cond, thenLabel, target2)

	e.label(thenLabel)
	e.genStmt(s.Then)
	if !e.terminated {
		e.emitf("  jump %s", endLabel)
		e.terminated = true
	}

	if s.Else != nil {
		e.label(elseLabel)
		e.genStmt(s.Else)
		if !e.terminated {
			e.emitf("  jump %s", endLabel)
			e.terminated = true
		}
	}

	e.label(endLabel)
}

func (e *Emitter) genWhile(s *ast.WhileStmt) {
	id := e.ctx.NextWhileID()
	condLabel := labelName("while_cond", id)
	bodyLabel := labelName("while_body", id)
	endLabel := labelName("while_end", id)

	e.emitf("  jump %s", condLabel)
	e.label(condLabel)
	cond := e.genExp(s.Cond)
	e.emitf("  br %s, %s, %s", cond, bodyLabel, endLabel)

	e.label(bodyLabel)
	e.ctx.PushLoop(id)
	e.genStmt(s.Body)
	e.ctx.PopLoop()
	if !e.terminated {
		e.emitf("  jump %s", condLabel)
		e.terminated = true
	}

	e.label(endLabel)
}

func labelName(prefix string, id int) string {
	return "%" + prefix + "_" + strconv.Itoa(id)
}
