// Package analytics содержит чистые функции агрегации кликов и посещений для дашборда.
package analytics

import (
	"sort"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultWindow = 7
	dayLayout     = "2006-01-02"
	recentWindow  = 24 * time.Hour
	unknownValue  = "Unknown"
)

// Field поле посещения, по которому строится разбивка
type Field string

const (
	FieldDevice  Field = "device"
	FieldBrowser Field = "browser"
	FieldOS      Field = "os"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Series struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type LinkStats struct {
	Total   int `json:"total"`
	Last24h int `json:"last_24h"`
}

// Report сводка для дашборда текущего профиля
type Report struct {
	Window   int                     `json:"window"`
	Clicks   []DayCount              `json:"clicks"`
	Visits   []DayCount              `json:"visits"`
	Devices  []Series                `json:"devices"`
	Browsers []Series                `json:"browsers"`
	OS       []Series                `json:"os"`
	Total    int                     `json:"total_clicks"`
	Last24h  int                     `json:"last_24h_clicks"`
	PerLink  map[uuid.UUID]LinkStats `json:"per_link"`
}

// NormalizeWindow поддерживаются окна 7, 30 и 90 дней, остальное приводится к 7
func NormalizeWindow(days int) int {
	switch days {
	case 7, 30, 90:
		return days
	default:
		return DefaultWindow
	}
}

// DailyCounts раскладывает события по дням от старого к новому, включая пустые дни.
// Последний бакет соответствует дню now.
func DailyCounts(events []time.Time, days int, now time.Time) []DayCount {
	days = NormalizeWindow(days)
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := today.AddDate(0, 0, -(days - 1))

	buckets := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := range buckets {
		date := start.AddDate(0, 0, i).Format(dayLayout)
		buckets[i].Date = date
		index[date] = i
	}

	for _, ts := range events {
		if i, ok := index[ts.In(loc).Format(dayLayout)]; ok {
			buckets[i].Count++
		}
	}

	return buckets
}

// GroupBy серия на каждое встреченное значение, по убыванию количества, затем по имени
func GroupBy(visits []models.Visit, field Field) []Series {
	counts := make(map[string]int)
	for _, v := range visits {
		var value string
		switch field {
		case FieldDevice:
			value = v.Device
		case FieldBrowser:
			value = v.Browser
		case FieldOS:
			value = v.OS
		}
		if value == "" {
			value = unknownValue
		}
		counts[value]++
	}

	series := make([]Series, 0, len(counts))
	for name, count := range counts {
		series = append(series, Series{Name: name, Count: count})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Count != series[j].Count {
			return series[i].Count > series[j].Count
		}
		return series[i].Name < series[j].Name
	})

	return series
}

// Last24h клики не старше 24 часов относительно now
func Last24h(clicks []models.Click, now time.Time) int {
	n := 0
	for _, c := range clicks {
		if recent(c.CreatedAt, now) {
			n++
		}
	}
	return n
}

// recent клик попадает в последние 24 часа; записи из будущего не считаются
func recent(at, now time.Time) bool {
	return !at.After(now) && now.Sub(at) <= recentWindow
}

func Total(clicks []models.Click) int {
	return len(clicks)
}

// PerLink общее число кликов и клики за сутки по каждой ссылке
func PerLink(clicks []models.Click, now time.Time) map[uuid.UUID]LinkStats {
	stats := make(map[uuid.UUID]LinkStats)
	for _, c := range clicks {
		s := stats[c.LinkID]
		s.Total++
		if recent(c.CreatedAt, now) {
			s.Last24h++
		}
		stats[c.LinkID] = s
	}
	return stats
}

// Build собирает полный отчёт
func Build(clicks []models.Click, visits []models.Visit, days int, now time.Time) Report {
	clickTimes := make([]time.Time, len(clicks))
	for i, c := range clicks {
		clickTimes[i] = c.CreatedAt
	}
	visitTimes := make([]time.Time, len(visits))
	for i, v := range visits {
		visitTimes[i] = v.CreatedAt
	}

	return Report{
		Window:   NormalizeWindow(days),
		Clicks:   DailyCounts(clickTimes, days, now),
		Visits:   DailyCounts(visitTimes, days, now),
		Devices:  GroupBy(visits, FieldDevice),
		Browsers: GroupBy(visits, FieldBrowser),
		OS:       GroupBy(visits, FieldOS),
		Total:    Total(clicks),
		Last24h:  Last24h(clicks, now),
		PerLink:  PerLink(clicks, now),
	}
}
