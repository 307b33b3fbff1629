// Package interpret turns a typed front-desk sentence such as
// `book Nadia thai with Ayu` into an add-booking command.
package interpret

import (
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"

	"roster-cli/internal/model"
)

type Command struct {
	Action    string `json:"action"`
	Customer  string `json:"customer"`
	ServiceID string `json:"serviceId"`
	WorkerID  string `json:"workerId"`
}

// Aliases map spoken service names to catalog names. Checked before fuzzy matching.
var Aliases = map[string]string{
	"swedish":          "Swedish Massage",
	"swedish massage":  "Swedish Massage",
	"thai":             "Thai Massage",
	"thai massage":     "Thai Massage",
	"deep tissue":      "Deep Tissue",
	"hot stone":        "Hot Stone",
	"facial":           "Facial Treatment",
	"facial treatment": "Facial Treatment",
	"reflexology":      "Reflexology",
}

// Longest aliases first so "thai massage" wins over "thai".
var aliasOrder = []string{
	"facial treatment", "swedish massage", "thai massage", "deep tissue",
	"reflexology", "hot stone", "swedish", "facial", "thai",
}

const namePattern = `([A-Za-z][A-Za-z\-]+(?:\s+[A-Za-z][A-Za-z\-]+)?)`

var (
	reCustomerQuoted = []*regexp.Regexp{
		regexp.MustCompile(`(?i)customer\s+"([^"]+)"`),
		regexp.MustCompile(`(?i)customer\s+'([^']+)'`),
	}
	reCustomer     = regexp.MustCompile(`(?i)customer\s+` + namePattern)
	reCustomerVerb = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bbook\s+` + namePattern + `\b`),
		regexp.MustCompile(`(?i)\bgives\s+` + namePattern + `\b`),
	}
	reWorker = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwith\s+([A-Za-z]+)\b`),
		regexp.MustCompile(`(?i)\bto\s+([A-Za-z]+)\b`),
	}
	reWord = regexp.MustCompile(`[A-Za-z]+`)

	aliasRes = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(aliasOrder))
		for i, a := range aliasOrder {
			out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(a) + `\b`)
		}
		return out
	}()
)

// Parse interprets text against the catalog. ok is false unless customer,
// service and worker were all found.
func Parse(text string, workers []model.Worker, services []model.Service) (Command, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Command{}, false
	}
	customer := Customer(t)

	var worker *model.Worker
	if w := firstGroup(reWorker, t); w != "" {
		worker = MatchWorker(w, workers)
	} else {
		worker = MatchWorker(t, workers)
	}
	service := MatchService(t, services)

	if customer == "" || worker == nil || service == nil {
		return Command{}, false
	}
	return Command{Action: "add", Customer: customer, ServiceID: service.ID, WorkerID: worker.ID}, true
}

// Customer extracts the customer name, or "".
func Customer(t string) string {
	if c := firstGroup(reCustomerQuoted, t); c != "" {
		return c
	}
	if m := reCustomer.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	return firstGroup(reCustomerVerb, t)
}

// MatchService resolves a service by alias, then by fuzzy match against
// catalog names.
func MatchService(t string, services []model.Service) *model.Service {
	lower := strings.ToLower(t)
	for i, alias := range aliasOrder {
		if aliasRes[i].MatchString(lower) {
			if s := serviceByName(Aliases[alias], services); s != nil {
				return s
			}
		}
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = strings.ToLower(s.Name)
	}
	if i, ok := bestMatch(lower, names); ok {
		return &services[i]
	}
	return nil
}

// MatchWorker fuzzy-matches a worker name.
func MatchWorker(t string, workers []model.Worker) *model.Worker {
	names := make([]string, len(workers))
	for i, w := range workers {
		names[i] = strings.ToLower(w.Name)
	}
	if i, ok := bestMatch(strings.ToLower(t), names); ok {
		return &workers[i]
	}
	return nil
}

// bestMatch fuzzy-matches every word of text against names and returns the
// highest scoring name. Words must cover at least a third of the name so that
// stray letters in a sentence do not select anything.
func bestMatch(text string, names []string) (int, bool) {
	best, bestScore := -1, 0
	for _, word := range reWord.FindAllString(text, -1) {
		if len(word) < 3 {
			continue
		}
		for _, m := range fuzzy.Find(word, names) {
			if 3*len(word) < len(names[m.Index]) {
				continue
			}
			if best < 0 || m.Score > bestScore {
				best, bestScore = m.Index, m.Score
			}
		}
	}
	return best, best >= 0
}

func serviceByName(n string, services []model.Service) *model.Service {
	for i := range services {
		if strings.EqualFold(services[i].Name, n) {
			return &services[i]
		}
	}
	return nil
}

func firstGroup(res []*regexp.Regexp, t string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(t); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ResolveService accepts a service id, an exact name or anything MatchService
// understands.
func ResolveService(s string, services []model.Service) *model.Service {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for i := range services {
		if services[i].ID == s || strings.EqualFold(services[i].Name, s) {
			return &services[i]
		}
	}
	return MatchService(s, services)
}

// ResolveWorker accepts a worker id, an exact name or a fuzzy name.
func ResolveWorker(s string, workers []model.Worker) *model.Worker {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for i := range workers {
		if workers[i].ID == s || strings.EqualFold(workers[i].Name, s) {
			return &workers[i]
		}
	}
	return MatchWorker(s, workers)
}
