package store

import "roster-cli/internal/model"

func DefaultWorkers() []model.Worker {
	return []model.Worker{
		{ID: "w1", Name: "Ayu"},
		{ID: "w2", Name: "Budi"},
		{ID: "w3", Name: "Citra"},
		{ID: "w4", Name: "Dewa"},
	}
}

func DefaultServices() []model.Service {
	return []model.Service{
		{ID: "svc_thai", Name: "Thai Massage", DurationMin: 60},
		{ID: "svc_deep", Name: "Deep Tissue", DurationMin: 120},
		{ID: "svc_sweed", Name: "Swedish Massage", DurationMin: 60},
		{ID: "svc_hot", Name: "Hot Stone", DurationMin: 90},
		{ID: "svc_facial", Name: "Facial Treatment", DurationMin: 45},
		{ID: "svc_reflex", Name: "Reflexology", DurationMin: 30},
	}
}

// Seed fills an empty catalog. It reports whether anything changed.
func Seed(db *DB) bool {
	changed := false
	if db.Version == 0 {
		db.Version = 1
		changed = true
	}
	if len(db.Workers) == 0 {
		db.Workers = DefaultWorkers()
		changed = true
	}
	if len(db.Services) == 0 {
		db.Services = DefaultServices()
		changed = true
	}
	if changed {
		for i := range db.Days {
			db.EnsureDay(db.Days[i].Date)
		}
	}
	return changed
}
