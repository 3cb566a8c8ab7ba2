package parser

import "github.com/jexl-go/jexl/internal/token"

const (
	lowest int = iota
	precAssign
	precTernary
	precCoalesce
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precRange
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
)

var precedences = map[token.Type]int{
	token.ASSIGN:         precAssign,
	token.PLUS_ASSIGN:    precAssign,
	token.MINUS_ASSIGN:   precAssign,
	token.STAR_ASSIGN:    precAssign,
	token.SLASH_ASSIGN:   precAssign,
	token.PERCENT_ASSIGN: precAssign,
	token.AMP_ASSIGN:     precAssign,
	token.PIPE_ASSIGN:    precAssign,
	token.CARET_ASSIGN:   precAssign,
	token.SHL_ASSIGN:     precAssign,
	token.SHR_ASSIGN:     precAssign,

	token.QUESTION: precTernary,
	token.ELVIS:    precCoalesce,
	token.COALESCE: precCoalesce,

	token.OR_OR:  precOr,
	token.AND_AND: precAnd,

	token.PIPE:  precBitOr,
	token.CARET: precBitXor,
	token.AMP:   precBitAnd,

	token.EQ:          precEquality,
	token.NEQ:         precEquality,
	token.MATCH:       precEquality,
	token.NOT_MATCH:   precEquality,
	token.STARTS_WITH: precEquality,
	token.ENDS_WITH:   precEquality,
	token.INSTANCEOF:  precEquality,

	token.LT:  precRelational,
	token.LTE: precRelational,
	token.GT:  precRelational,
	token.GTE: precRelational,
	token.IN:  precRelational,

	token.SHL:  precShift,
	token.SHR:  precShift,
	token.USHR: precShift,

	token.DOTDOT: precRange,

	token.PLUS:  precAdditive,
	token.MINUS: precAdditive,

	token.STAR:    precMultiplicative,
	token.SLASH:   precMultiplicative,
	token.PERCENT: precMultiplicative,

	token.INC: precPostfix,
	token.DEC: precPostfix,

	token.DOT:           precCall,
	token.SAFE_DOT:      precCall,
	token.LBRACKET:      precCall,
	token.SAFE_LBRACKET: precCall,
	token.LPAREN:        precCall,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return lowest
}
