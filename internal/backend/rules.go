package backend

import (
	"sync"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// ruleSet holds the lookup rules of captured entries, keyed by the
// resolved entry URL. Later rules for the same URL replace earlier ones.
type ruleSet struct {
	mu    sync.RWMutex
	order []string
	rules map[string]domain.URLItem
}

func newRuleSet() *ruleSet {
	return &ruleSet{rules: make(map[string]domain.URLItem)}
}

func (r *ruleSet) add(item domain.URLItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[item.URL]; !ok {
		r.order = append(r.order, item.URL)
	}
	r.rules[item.URL] = item
}

func (r *ruleSet) all() []domain.URLItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.URLItem, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, r.rules[u])
	}
	return out
}

func (r *ruleSet) replace(items []domain.URLItem) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = r.order[:0]
	r.rules = make(map[string]domain.URLItem, len(items))
	for _, item := range items {
		if _, ok := r.rules[item.URL]; !ok {
			r.order = append(r.order, item.URL)
		}
		r.rules[item.URL] = item
	}
}

// match returns the entry URL whose rule accepts target. Rules only apply
// to URLs that share the entry's path.
func (r *ruleSet) match(target string) (string, bool) {
	path := utils.StripQuery(target)
	query := utils.QueryOf(target)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.order {
		rule := r.rules[u]
		if utils.StripQuery(rule.URL) != path {
			continue
		}
		if rule.IgnoreQuery {
			return rule.URL, true
		}
		if len(rule.MatchQuery.Params()) > 0 && rule.MatchQuery.Matches(query) {
			return rule.URL, true
		}
	}
	return "", false
}
