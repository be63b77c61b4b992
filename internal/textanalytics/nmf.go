// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package textanalytics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrTooManyComponents is returned when the requested rank exceeds
	// min(documents, terms).
	ErrTooManyComponents = errors.New("components exceed matrix rank bound")

	// ErrZeroMatrix is returned for an all-zero input.
	ErrZeroMatrix = errors.New("input matrix is all zeros")

	// ErrSVD is returned when the initializing decomposition fails.
	ErrSVD = errors.New("singular value decomposition failed")
)

const nmfEpsilon = 1e-10

// NMFConfig controls the factorization.
type NMFConfig struct {
	MaxIter int     `json:"max_iter"`
	Tol     float64 `json:"tol"`
}

// DefaultNMFConfig returns the factorization defaults.
func DefaultNMFConfig() NMFConfig {
	return NMFConfig{MaxIter: 400, Tol: 1e-4}
}

// NMF factors the non-negative matrix x (n x m) into W (n x k) and H (k x m)
// minimizing the Frobenius reconstruction error. It is deterministic: the
// starting point comes from an SVD (NNDSVDa) rather than random draws.
func NMF(x *mat.Dense, k int, cfg NMFConfig) (w, h *mat.Dense, err error) {
	n, m := x.Dims()
	if k < 1 || k > n || k > m {
		return nil, nil, fmt.Errorf("%w: k=%d, dims=%dx%d", ErrTooManyComponents, k, n, m)
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultNMFConfig().MaxIter
	}
	if cfg.Tol <= 0 {
		cfg.Tol = DefaultNMFConfig().Tol
	}

	w, h, err = nndsvda(x, k)
	if err != nil {
		return nil, nil, err
	}

	// Scratch matrices keep fixed shapes across iterations.
	var (
		numH, denH mat.Dense // k x m
		numW, denW mat.Dense // n x k
		gram       mat.Dense // k x k
		wh         mat.Dense // n x m
	)
	prevErr := reconstructionError(x, w, h, &wh)
	initErr := prevErr

	for iter := 1; iter <= cfg.MaxIter; iter++ {
		// H <- H * (W'X) / (W'WH)
		numH.Mul(w.T(), x)
		gram.Mul(w.T(), w)
		denH.Mul(&gram, h)
		multiplicativeUpdate(h, &numH, &denH)

		// W <- W * (XH') / (WHH')
		numW.Mul(x, h.T())
		gram.Mul(h, h.T())
		denW.Mul(w, &gram)
		multiplicativeUpdate(w, &numW, &denW)

		if iter%10 == 0 {
			cur := reconstructionError(x, w, h, &wh)
			if initErr > 0 && (prevErr-cur)/initErr < cfg.Tol {
				break
			}
			prevErr = cur
		}
	}

	return w, h, nil
}

func multiplicativeUpdate(dst, num, den *mat.Dense) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(i, j, dst.At(i, j)*num.At(i, j)/(den.At(i, j)+nmfEpsilon))
		}
	}
}

func reconstructionError(x, w, h, scratch *mat.Dense) float64 {
	scratch.Reset()
	scratch.Mul(w, h)
	scratch.Sub(x, scratch)
	return mat.Norm(scratch, 2)
}

// nndsvda builds the non-negative double SVD starting point, filling zeros
// with the mean of x so multiplicative updates can move every entry.
func nndsvda(x *mat.Dense, k int) (*mat.Dense, *mat.Dense, error) {
	n, m := x.Dims()
	avg := mat.Sum(x) / float64(n*m)
	if avg <= 0 {
		return nil, nil, ErrZeroMatrix
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, nil, ErrSVD
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	w := mat.NewDense(n, k, nil)
	h := mat.NewDense(k, m, nil)

	for j := 0; j < k; j++ {
		ucol := mat.Col(nil, j, &u)
		vcol := mat.Col(nil, j, &v)

		if j == 0 {
			scale := math.Sqrt(s[0])
			for i, val := range ucol {
				w.Set(i, 0, scale*math.Abs(val))
			}
			for i, val := range vcol {
				h.Set(0, i, scale*math.Abs(val))
			}
			continue
		}

		up, un := splitSigns(ucol)
		vp, vn := splitSigns(vcol)
		upNorm, unNorm := floats.Norm(up, 2), floats.Norm(un, 2)
		vpNorm, vnNorm := floats.Norm(vp, 2), floats.Norm(vn, 2)

		pos, neg := upNorm*vpNorm, unNorm*vnNorm
		uu, vv, uNorm, vNorm, sigma := up, vp, upNorm, vpNorm, pos
		if neg > pos {
			uu, vv, uNorm, vNorm, sigma = un, vn, unNorm, vnNorm, neg
		}
		if uNorm == 0 || vNorm == 0 {
			continue
		}

		lambda := math.Sqrt(s[j] * sigma)
		for i, val := range uu {
			w.Set(i, j, lambda*val/uNorm)
		}
		for i, val := range vv {
			h.Set(j, i, lambda*val/vNorm)
		}
	}

	fillSmall(w, avg)
	fillSmall(h, avg)
	return w, h, nil
}

func splitSigns(xs []float64) (pos, neg []float64) {
	pos = make([]float64, len(xs))
	neg = make([]float64, len(xs))
	for i, x := range xs {
		if x > 0 {
			pos[i] = x
		} else {
			neg[i] = -x
		}
	}
	return pos, neg
}

func fillSmall(d *mat.Dense, fill float64) {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if d.At(i, j) < 1e-6 {
				d.Set(i, j, fill)
			}
		}
	}
}
