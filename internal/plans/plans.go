// Package plans задаёт статический каталог тарифов. Каталог загружается
// один раз при старте процесса и не хранится в базе, платежи ссылаются
// на тариф по типу.
package plans

import (
	"time"

	"github.com/mwalimuclement/theory-access/internal/models"
)

// Catalog все тарифы платформы в порядке возрастания цены.
var Catalog = []models.Plan{
	{Type: models.PlanSingle, Price: 100, Description: "kukizamini kimwe", DurationHours: 1},
	{Type: models.PlanDaily, Price: 1000, Description: "imara umunsi wose", DurationHours: 24},
	{Type: models.PlanWeekly, Price: 4000, Description: "imara icyumweru cyose", DurationHours: 168},
	{Type: models.PlanMonthly, Price: 10000, Description: "imara ukwezi kwose", DurationHours: 720},
}

// Find возвращает тариф по типу и признак, что тип известен каталогу.
func Find(t models.PlanType) (models.Plan, bool) {
	for _, p := range Catalog {
		if p.Type == t {
			return p, true
		}
	}
	return models.Plan{}, false
}

// Duration переводит длительность тарифа в time.Duration.
func Duration(p models.Plan) time.Duration {
	return time.Duration(p.DurationHours) * time.Hour
}
