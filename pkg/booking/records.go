package booking

import "github.com/rhuss/buchung/pkg/api"

// Record conversion for the two collections. Records round-trip through
// JSONB in the postgres backend, which turns every number into a float64,
// so reads must accept both int and float64.

func tableToRecord(t api.Table) map[string]any {
	rec := map[string]any{
		"id":     t.ID,
		"number": t.Number,
		"places": t.Places,
		"isVip":  t.IsVip,
	}
	if t.MinOrder != nil {
		rec["minOrder"] = *t.MinOrder
	}
	return rec
}

func tableFromRecord(rec map[string]any) api.Table {
	t := api.Table{
		ID:     recordInt(rec, "id"),
		Number: recordInt(rec, "number"),
		Places: recordInt(rec, "places"),
	}
	if v, ok := rec["isVip"].(bool); ok {
		t.IsVip = v
	}
	if _, ok := rec["minOrder"]; ok {
		minOrder := recordInt(rec, "minOrder")
		t.MinOrder = &minOrder
	}
	return t
}

func reservationToRecord(r api.Reservation) map[string]any {
	return map[string]any{
		"id":            r.ID,
		"tableNumber":   r.TableNumber,
		"clientName":    r.ClientName,
		"phoneNumber":   r.PhoneNumber,
		"date":          r.Date,
		"slotTimeStart": r.SlotTimeStart,
		"slotTimeEnd":   r.SlotTimeEnd,
	}
}

func reservationFromRecord(rec map[string]any) api.Reservation {
	return api.Reservation{
		ID:            recordString(rec, "id"),
		TableNumber:   recordInt(rec, "tableNumber"),
		ClientName:    recordString(rec, "clientName"),
		PhoneNumber:   recordString(rec, "phoneNumber"),
		Date:          recordString(rec, "date"),
		SlotTimeStart: recordString(rec, "slotTimeStart"),
		SlotTimeEnd:   recordString(rec, "slotTimeEnd"),
	}
}

func recordInt(rec map[string]any, key string) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func recordString(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
