package memory

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"millstock/internal/domain/reference"
)

// ReferenceRepo implements reference.Repository.
type ReferenceRepo struct {
	store *Store
}

var _ reference.Repository = (*ReferenceRepo)(nil)

func NewReferenceRepo(store *Store) *ReferenceRepo {
	return &ReferenceRepo{store: store}
}

func listRows[T any](ctx context.Context, store *Store, name string, cmp func(a, b T) int) ([]T, error) {
	var out []T
	err := store.access(ctx, func(tables map[string]map[string][]byte) error {
		for _, data := range table(tables, name) {
			v, err := decode(data, new(T))
			if err != nil {
				return err
			}
			out = append(out, *v)
		}
		return nil
	})
	slices.SortFunc(out, cmp)
	return out, err
}

func replaceRows[T any](ctx context.Context, store *Store, name string, rows []T, key func(T) string) error {
	return store.access(ctx, func(tables map[string]map[string][]byte) error {
		fresh := make(map[string][]byte, len(rows))
		for _, row := range rows {
			data, err := encode(row)
			if err != nil {
				return err
			}
			fresh[key(row)] = data
		}
		tables[name] = fresh
		return nil
	})
}

func (r *ReferenceRepo) ListTanks(ctx context.Context) ([]reference.Tank, error) {
	return listRows(ctx, r.store, "ref_tanks", func(a, b reference.Tank) int { return a.Number - b.Number })
}

func (r *ReferenceRepo) ListDensities(ctx context.Context) ([]reference.Density, error) {
	return listRows(ctx, r.store, "ref_densities", func(a, b reference.Density) int {
		return a.Temperature - b.Temperature
	})
}

func (r *ReferenceRepo) ListSilos(ctx context.Context) ([]reference.Silo, error) {
	return listRows(ctx, r.store, "ref_silos", func(a, b reference.Silo) int {
		return strings.Compare(a.Code, b.Code)
	})
}

func (r *ReferenceRepo) ReplaceTanks(ctx context.Context, tanks []reference.Tank) error {
	return replaceRows(ctx, r.store, "ref_tanks", tanks, func(t reference.Tank) string { return strconv.Itoa(t.Number) })
}

func (r *ReferenceRepo) ReplaceDensities(ctx context.Context, densities []reference.Density) error {
	return replaceRows(ctx, r.store, "ref_densities", densities, func(d reference.Density) string {
		return strconv.Itoa(d.Temperature)
	})
}

func (r *ReferenceRepo) ReplaceSilos(ctx context.Context, silos []reference.Silo) error {
	return replaceRows(ctx, r.store, "ref_silos", silos, func(s reference.Silo) string { return s.Code })
}
