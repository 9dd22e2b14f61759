package allocation

import (
	"math"
	"sort"
)

// Allocator turns raw per-symbol signal strength into portfolio weights.
// Contract: raw values may be anything (negative, NaN, garbage) — a broken
// strategy must not take down the whole run here — and the output always
// satisfies w_i >= 0 and Σw <= budget.
type Allocator interface {
	Allocate(raw map[string]float64, budget float64) map[string]float64
}

const defaultEps = 1e-12

// cleanLongOnly maps raw values into safe long-only territory: NaN and
// negative inputs become 0.
func cleanLongOnly(raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// capAndRedistribute applies a per-asset weight cap, redistributing the
// leftover budget proportionally among assets still below the cap
// (water-filling). Iterates in sorted key order so results never depend on
// map iteration. Guarantees Σw <= budget.
func capAndRedistribute(weights map[string]float64, cap, budget, eps float64) map[string]float64 {
	if cap <= 0 {
		out := make(map[string]float64, len(weights))
		for k := range weights {
			out[k] = 0
		}
		return out
	}

	keys := sortedKeys(weights)
	w := make(map[string]float64, len(weights))
	for _, k := range keys {
		w[k] = math.Min(weights[k], cap)
	}

	for iter := 0; iter < 10000; iter++ {
		var sum float64
		for _, k := range keys {
			sum += w[k]
		}
		if sum >= budget-eps {
			break
		}
		leftover := budget - sum

		eligible := make([]string, 0, len(keys))
		var base float64
		for _, k := range keys {
			if w[k] < cap-eps {
				eligible = append(eligible, k)
				base += w[k]
			}
		}
		if len(eligible) == 0 {
			break
		}

		changed := false
		if base <= eps {
			add := leftover / float64(len(eligible))
			for _, k := range eligible {
				next := math.Min(cap, w[k]+add)
				if math.Abs(next-w[k]) > eps {
					changed = true
				}
				w[k] = next
			}
		} else {
			for _, k := range eligible {
				next := math.Min(cap, w[k]+leftover*(w[k]/base))
				if math.Abs(next-w[k]) > eps {
					changed = true
				}
				w[k] = next
			}
		}
		if !changed {
			break
		}
	}

	var sum float64
	for _, k := range keys {
		sum += w[k]
	}
	if sum > budget+eps {
		scale := budget / sum
		for _, k := range keys {
			w[k] *= scale
		}
	}
	return w
}

// Proportional normalizes raw strengths so they sum to the budget, with an
// optional per-asset cap. This is the default allocator: stronger signals get
// proportionally more of the book.
type Proportional struct {
	// Cap is the maximum weight per asset; <= 0 means uncapped.
	Cap float64
}

func (a Proportional) Allocate(raw map[string]float64, budget float64) map[string]float64 {
	clean := cleanLongOnly(raw)
	out := make(map[string]float64, len(clean))
	if budget <= 0 {
		for k := range clean {
			out[k] = 0
		}
		return out
	}

	var sum float64
	for _, v := range clean {
		sum += v
	}
	if sum <= defaultEps {
		for k := range clean {
			out[k] = 0
		}
		return out
	}

	for k, v := range clean {
		out[k] = (v / sum) * budget
	}
	if a.Cap > 0 {
		return capAndRedistribute(out, a.Cap, budget, defaultEps)
	}
	return out
}

// EqualWeight splits the budget evenly across assets with an active (positive)
// signal, ignoring signal strength. Useful for binary 0/1 signals.
type EqualWeight struct {
	Cap float64
}

func (a EqualWeight) Allocate(raw map[string]float64, budget float64) map[string]float64 {
	clean := cleanLongOnly(raw)
	out := make(map[string]float64, len(clean))
	if budget <= 0 {
		for k := range clean {
			out[k] = 0
		}
		return out
	}

	var active int
	for _, v := range clean {
		if v > defaultEps {
			active++
		}
	}
	if active == 0 {
		for k := range clean {
			out[k] = 0
		}
		return out
	}

	each := budget / float64(active)
	for k, v := range clean {
		if v > defaultEps {
			out[k] = each
		} else {
			out[k] = 0
		}
	}
	if a.Cap > 0 {
		return capAndRedistribute(out, a.Cap, budget, defaultEps)
	}
	return out
}
