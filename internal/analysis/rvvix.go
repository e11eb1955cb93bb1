package analysis

import (
	"context"
	"math"

	"datastorage/internal/datasets"
	"datastorage/internal/datasets/cboe"
	"datastorage/internal/datasets/oxfordman"
	apperrors "datastorage/internal/errors"
	"datastorage/internal/table"
)

// Derived column names of the RV/VIX frame
const (
	LogReturn  = "logR"
	Difference = "RV-VIX"
)

// RVVIX joins realized volatility with VIX and SPX on date, adds daily log
// returns of SPX and the RV-VIX spread, and drops every row with a missing
// value, which always includes the first day
func RVVIX(realized, vixSPX *table.Table) (*table.Table, error) {
	t, err := table.InnerJoin(realized, vixSPX, "date")
	if err != nil {
		return nil, apperrors.NewTransformError("failed to join realized vol with vix_spx", err)
	}
	if t, err = t.SortBy("date"); err != nil {
		return nil, apperrors.NewTransformError("failed to sort", err)
	}

	spx, err := t.Floats(cboe.SPX)
	if err != nil {
		return nil, apperrors.NewTransformError("missing SPX column", err)
	}
	if t, err = t.DeriveFloat(LogReturn, func(i int) float64 {
		if i == 0 {
			return math.NaN()
		}
		return math.Log(spx[i]) - math.Log(spx[i-1])
	}); err != nil {
		return nil, apperrors.NewTransformError("failed to derive log returns", err)
	}
	if t, err = t.DropMissing(); err != nil {
		return nil, apperrors.NewTransformError("failed to drop missing rows", err)
	}

	rv, err := t.Floats(oxfordman.RV)
	if err != nil {
		return nil, apperrors.NewTransformError("missing RV column", err)
	}
	vix, err := t.Floats(cboe.VIX)
	if err != nil {
		return nil, apperrors.NewTransformError("missing VIX column", err)
	}
	if t, err = t.DeriveFloat(Difference, func(i int) float64 { return rv[i] - vix[i] }); err != nil {
		return nil, apperrors.NewTransformError("failed to derive spread", err)
	}
	if t, err = t.WithKey("date"); err != nil {
		return nil, apperrors.NewTransformError("failed to set key", err)
	}
	return t.WithName("rv_vix"), nil
}

// LoadRVVIX loads both inputs from the store and composes them
func LoadRVVIX(ctx context.Context, env *datasets.Env) (*table.Table, error) {
	realized, err := oxfordman.Load(ctx, env)
	if err != nil {
		return nil, err
	}
	vixSPX, err := cboe.Load(ctx, env)
	if err != nil {
		return nil, err
	}
	return RVVIX(realized, vixSPX)
}
