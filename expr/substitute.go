package expr

// This file implements Substitute, a feature original_source/ carries
// that spec.md's distillation left out: replacing every occurrence of
// a symbol with a replacement expression and re-deriving the result
// through the same canonicalizing factories every other construction
// path uses, so a substituted expression is already in simplified
// form. Substitution is scoped per domain (scalar-for-scalar,
// tensor-for-tensor); a Tensor's embedded Scalar coefficients and
// exponents are left untouched by TensorSubstitute — swap those with a
// separate ScalarSubstitute pass over the pieces introspect.go exposes
// if a coefficient itself needs rewriting.

// ScalarSubstitute returns e with every occurrence of target replaced
// by repl, rebuilt bottom-up through the Scalar factories.
func ScalarSubstitute(e, target, repl Scalar) Scalar {
	if ScalarEqual(e, target) {
		return repl
	}
	switch v := e.(type) {
	case *symbolScalar, *zeroScalar, *oneScalar, *constantScalar:
		return e
	case *namedScalar:
		return ScalarNamed(v.Name, ScalarSubstitute(v.Sub, target, repl))
	case *unaryScalar:
		return rebuildUnaryScalar(v.kind, ScalarSubstitute(v.X, target, repl))
	case *powScalar:
		return ScalarPow(ScalarSubstitute(v.Base, target, repl), ScalarSubstitute(v.Exp, target, repl))
	case *addScalar:
		children := e.Children()
		out := make([]Scalar, len(children))
		for i, c := range children {
			out[i] = ScalarSubstitute(c, target, repl)
		}
		return ScalarAdd(out...)
	case *mulScalar:
		children := e.Children()
		out := make([]Scalar, len(children))
		for i, c := range children {
			out[i] = ScalarSubstitute(c, target, repl)
		}
		return ScalarMul(out...)
	default:
		return e
	}
}

func rebuildUnaryScalar(kind ScalarKind, x Scalar) Scalar {
	switch kind {
	case SkNeg:
		return ScalarNeg(x)
	case SkSin:
		return ScalarSin(x)
	case SkCos:
		return ScalarCos(x)
	case SkTan:
		return ScalarTan(x)
	case SkASin:
		return ScalarASin(x)
	case SkACos:
		return ScalarACos(x)
	case SkATan:
		return ScalarATan(x)
	case SkExp:
		return ScalarExp(x)
	case SkLog:
		return ScalarLog(x)
	case SkSqrt:
		return ScalarSqrt(x)
	case SkSign:
		return ScalarSign(x)
	case SkAbs:
		return ScalarAbs(x)
	default:
		return x
	}
}

// TensorSubstitute returns e with every occurrence of target replaced
// by repl, rebuilt bottom-up through the Tensor factories. Scalar
// coefficients and Pow exponents embedded in e are carried through
// unchanged.
func TensorSubstitute(e, target, repl Tensor) Tensor {
	if TensorEqual(e, target) {
		return repl
	}
	switch v := e.(type) {
	case *symbolTensor, *zeroTensor, *deltaTensor, *identityTensor, *projectorTensor:
		return e
	case *negTensor:
		return TensorNeg(TensorSubstitute(v.X, target, repl))
	case *scalarMulTensor:
		return TensorScalarMul(v.S, TensorSubstitute(v.T, target, repl))
	case *invTensor:
		out, err := TensorInv(TensorSubstitute(v.X, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *powTensor:
		out, err := TensorPow(TensorSubstitute(v.Base, target, repl), v.Exp)
		if err != nil {
			panic(err)
		}
		return out
	case *basisChangeTensor:
		out, err := TensorBasisChange(TensorSubstitute(v.X, target, repl), v.Perm)
		if err != nil {
			panic(err)
		}
		return out
	case *symmetryTensor:
		out, err := TensorSymmetry(TensorSubstitute(v.X, target, repl), v.Perms)
		if err != nil {
			panic(err)
		}
		return out
	case *innerProductTensor:
		out, err := TensorInnerProduct(TensorSubstitute(v.LHS, target, repl), v.LHSIdx, TensorSubstitute(v.RHS, target, repl), v.RHSIdx)
		if err != nil {
			panic(err)
		}
		return out
	case *outerProductTensor:
		out, err := TensorOuterProduct(TensorSubstitute(v.LHS, target, repl), v.LHSIdx, TensorSubstitute(v.RHS, target, repl), v.RHSIdx)
		if err != nil {
			panic(err)
		}
		return out
	case *addTensor:
		children := e.Children()
		out := make([]Tensor, len(children))
		for i, c := range children {
			out[i] = TensorSubstitute(c, target, repl)
		}
		return TensorAdd(out...)
	case *mulTensor:
		children := e.Children()
		out := make([]Tensor, len(children))
		for i, c := range children {
			out[i] = TensorSubstitute(c, target, repl)
		}
		result, err := TensorMul(out...)
		if err != nil {
			panic(err)
		}
		return result
	case *simpleOuterProductTensor:
		children := e.Children()
		out := make([]Tensor, len(children))
		for i, c := range children {
			out[i] = TensorSubstitute(c, target, repl)
		}
		result, err := TensorSimpleOuterProduct(out...)
		if err != nil {
			panic(err)
		}
		return result
	default:
		return e
	}
}

// T2SSubstituteTensor returns t with every occurrence of the tensor
// target replaced by repl within Trace/Determinant/Norm/Dot/InnerProduct/
// WithTensorMul operands and any embedded Tensor wrapper, rebuilt
// through the T2S factories. Pow, WithScalarDiv, ScalarWithDiv and
// WithTensorDiv nodes are returned unchanged, so occurrences beneath
// them (including a Mul factor with an exponent other than 1) are not
// replaced.
func T2SSubstituteTensor(t T2S, target, repl Tensor) T2S {
	switch v := t.(type) {
	case *zeroT2S, *oneT2S:
		return t
	case *wrappedT2S:
		out, err := T2SWrap(TensorSubstitute(v.X, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *traceT2S:
		out, err := T2STrace(TensorSubstitute(v.X, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *determinantT2S:
		out, err := T2SDeterminant(TensorSubstitute(v.X, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *normT2S:
		return T2SNorm(TensorSubstitute(v.X, target, repl))
	case *dotT2S:
		out, err := T2SDot(TensorSubstitute(v.LHS, target, repl), TensorSubstitute(v.RHS, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *negT2S:
		return T2SNeg(T2SSubstituteTensor(v.X, target, repl))
	case *logT2S:
		out, err := T2SLog(T2SSubstituteTensor(v.X, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *withScalarAddT2S:
		return T2SWithScalarAdd(v.S, T2SSubstituteTensor(v.T, target, repl))
	case *withScalarMulT2S:
		return T2SWithScalarMul(v.S, T2SSubstituteTensor(v.T, target, repl))
	case *innerProductToScalarT2S:
		out, err := T2SInnerProduct(TensorSubstitute(v.LHS, target, repl), v.LHSIdx, TensorSubstitute(v.RHS, target, repl), v.RHSIdx)
		if err != nil {
			panic(err)
		}
		return out
	case *withTensorMulT2S:
		out, err := T2SWithTensorMul(TensorSubstitute(v.T1, target, repl), TensorSubstitute(v.T2, target, repl))
		if err != nil {
			panic(err)
		}
		return out
	case *addT2S:
		children := t.Children()
		out := make([]T2S, len(children))
		for i, c := range children {
			out[i] = T2SSubstituteTensor(c, target, repl)
		}
		result, err := T2SAdd(out...)
		if err != nil {
			panic(err)
		}
		return result
	case *mulT2S:
		children := t.Children()
		out := make([]T2S, len(children))
		for i, c := range children {
			out[i] = T2SSubstituteTensor(c, target, repl)
		}
		result, err := T2SMul(out...)
		if err != nil {
			panic(err)
		}
		return T2SWithScalarMul(v.Coeff, result)
	default:
		return t
	}
}
