package diff

import "github.com/symtensor/tensorcas/expr"

// Scalar returns d(e)/d(wrt), differentiating a scalar expression with
// respect to a scalar symbol (spec.md §4.7.1): linearity over Add, the
// Leibniz product rule over Mul, the chain rule through every unary
// node, and the generalized power rule for Pow.
func Scalar(e expr.Scalar, wrt expr.Scalar) expr.Scalar {
	switch e.ScalarKind() {
	case expr.SkZero, expr.SkOne, expr.SkConstant:
		return expr.ScalarZero()
	case expr.SkSymbol:
		if expr.ScalarEqual(e, wrt) {
			return expr.ScalarOne()
		}
		return expr.ScalarZero()
	case expr.SkNamed:
		sub, _ := expr.ScalarNamedOperand(e)
		return Scalar(sub, wrt)
	case expr.SkAdd:
		terms := e.Children()
		parts := make([]expr.Scalar, len(terms))
		for i, t := range terms {
			parts[i] = Scalar(t, wrt)
		}
		return expr.ScalarAdd(parts...)
	case expr.SkMul:
		return diffMul(e, wrt)
	case expr.SkPow:
		return diffPow(e, wrt)
	default:
		return diffUnary(e, wrt)
	}
}

// diffMul applies the Leibniz rule: d(prod f_i) = sum_i (d f_i) * prod_{j!=i} f_j.
func diffMul(e expr.Scalar, wrt expr.Scalar) expr.Scalar {
	factors := e.Children()
	terms := make([]expr.Scalar, 0, len(factors))
	for i := range factors {
		df := Scalar(factors[i], wrt)
		if isLiteralZero(df) {
			continue
		}
		rest := make([]expr.Scalar, 0, len(factors))
		rest = append(rest, df)
		for j, f := range factors {
			if j != i {
				rest = append(rest, f)
			}
		}
		terms = append(terms, expr.ScalarMul(rest...))
	}
	if len(terms) == 0 {
		return expr.ScalarZero()
	}
	return expr.ScalarAdd(terms...)
}

// diffPow implements the generalized power rule for f^g. When g does
// not depend on wrt, this reduces to the elementary power rule
// g*f^(g-1)*f'; otherwise it uses the full
// f^g * (g'*ln(f) + g*f'/f) form.
func diffPow(e expr.Scalar, wrt expr.Scalar) expr.Scalar {
	base, exp, ok := expr.ScalarPowParts(e)
	if !ok {
		return expr.ScalarZero()
	}
	dBase := Scalar(base, wrt)
	dExp := Scalar(exp, wrt)
	if isLiteralZero(dExp) {
		if isLiteralZero(dBase) {
			return expr.ScalarZero()
		}
		expMinusOne := expr.ScalarAdd(exp, expr.ScalarNeg(expr.ScalarOne()))
		return expr.ScalarMul(exp, expr.ScalarPow(base, expMinusOne), dBase)
	}
	logTerm := expr.ScalarMul(dExp, expr.ScalarLog(base))
	ratioTerm, err := expr.ScalarDiv(expr.ScalarMul(exp, dBase), base)
	if err != nil {
		ratioTerm = expr.ScalarZero()
	}
	return expr.ScalarMul(e, expr.ScalarAdd(logTerm, ratioTerm))
}

// diffUnary applies the chain rule through the elementary-function
// derivative table.
func diffUnary(e expr.Scalar, wrt expr.Scalar) expr.Scalar {
	kind, x, ok := expr.ScalarUnaryOperand(e)
	if !ok {
		return expr.ScalarZero()
	}
	dx := Scalar(x, wrt)
	if isLiteralZero(dx) {
		return expr.ScalarZero()
	}
	switch kind {
	case expr.SkNeg:
		return expr.ScalarNeg(dx)
	case expr.SkSin:
		return expr.ScalarMul(expr.ScalarCos(x), dx)
	case expr.SkCos:
		return expr.ScalarNeg(expr.ScalarMul(expr.ScalarSin(x), dx))
	case expr.SkTan:
		sec2 := expr.ScalarAdd(expr.ScalarOne(), expr.ScalarPow(expr.ScalarTan(x), expr.ScalarConstantFromFraction(2, 1)))
		return expr.ScalarMul(sec2, dx)
	case expr.SkASin:
		denom := expr.ScalarSqrt(expr.ScalarAdd(expr.ScalarOne(), expr.ScalarNeg(expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)))))
		q, err := expr.ScalarDiv(dx, denom)
		if err != nil {
			return expr.ScalarZero()
		}
		return q
	case expr.SkACos:
		denom := expr.ScalarSqrt(expr.ScalarAdd(expr.ScalarOne(), expr.ScalarNeg(expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)))))
		q, err := expr.ScalarDiv(dx, denom)
		if err != nil {
			return expr.ScalarZero()
		}
		return expr.ScalarNeg(q)
	case expr.SkATan:
		denom := expr.ScalarAdd(expr.ScalarOne(), expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)))
		q, err := expr.ScalarDiv(dx, denom)
		if err != nil {
			return expr.ScalarZero()
		}
		return q
	case expr.SkExp:
		return expr.ScalarMul(e, dx)
	case expr.SkLog:
		q, err := expr.ScalarDiv(dx, x)
		if err != nil {
			return expr.ScalarZero()
		}
		return q
	case expr.SkSqrt:
		q, err := expr.ScalarDiv(dx, expr.ScalarMul(expr.ScalarConstantFromFraction(2, 1), e))
		if err != nil {
			return expr.ScalarZero()
		}
		return q
	case expr.SkSign:
		return expr.ScalarZero()
	case expr.SkAbs:
		return expr.ScalarMul(expr.ScalarSign(x), dx)
	default:
		return expr.ScalarZero()
	}
}

func isLiteralZero(e expr.Scalar) bool { return e.ScalarKind() == expr.SkZero }
