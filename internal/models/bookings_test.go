package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusLabels(t *testing.T) {
	cases := map[BookingStatus]string{
		BookingPending:    "Menunggu Konfirmasi",
		BookingConfirmed:  "Dikonfirmasi",
		BookingInProgress: "Dalam Proses",
		BookingServicing:  "Sedang Diperbaiki",
		BookingCompleted:  "Selesai",
		BookingCancelled:  "Dibatalkan",
	}
	for status, label := range cases {
		assert.Equal(t, label, status.Label(), status)
		assert.NotEqual(t, UnknownStatusClass, status.StyleClass(), status)
	}
	assert.Len(t, AllStatuses(), len(cases))
}

func TestUnknownStatusFallsBack(t *testing.T) {
	for _, s := range []BookingStatus{"", "archived", "PENDING"} {
		assert.NotPanics(t, func() {
			assert.Equal(t, UnknownStatusLabel, s.Label())
			assert.Equal(t, UnknownStatusClass, s.StyleClass())
		})
		assert.False(t, s.IsKnown())
	}
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus(" completed ")
	require.NoError(t, err)
	assert.Equal(t, BookingCompleted, s)

	_, err = ParseBookingStatus("done")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A Amount  `json:"a"`
		B Amount  `json:"b"`
		C *Amount `json:"c"`
		D Amount  `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":150000,"b":"Rp 200.000","c":null,"d":12.5}`), &v))
	assert.Equal(t, Amount("150000"), v.A)
	assert.Equal(t, Amount("Rp 200.000"), v.B)
	assert.Nil(t, v.C)
	assert.Equal(t, Amount("12.5"), v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

const bookingRows = `[
  {
    "id": "BK-001",
    "customer_name": "Budi",
    "customer_phone": "0812",
    "customer_email": "",
    "customer_address": "Jl. Merdeka 1",
    "printer_brand": "Epson",
    "printer_model": "L3110",
    "problem_category": "Paper jam",
    "problem_description": "Paper stuck",
    "service_type": "onsite",
    "service_date": "2024-06-01",
    "service_time": "10:00",
    "status": "servicing",
    "technician": null,
    "estimated_cost": 150000,
    "actual_cost": null,
    "timeline": [
      {"title": "Booking dibuat", "description": "ok", "completed": true, "timestamp": "2024-06-01T08:00:00+07:00"},
      {"title": "Diagnosa", "description": "", "completed": false, "timestamp": "not-a-date"}
    ],
    "notes": "  ",
    "created_at": "2024-06-01T08:00:00.123456+00:00"
  },
  {
    "id": "",
    "customer_name": "No id",
    "customer_phone": "0813",
    "printer_brand": "Canon"
  },
  {
    "id": "BK-003",
    "customer_name": "Sari",
    "customer_phone": "0814",
    "printer_brand": "HP",
    "status": "archived",
    "technician": "tech-1",
    "estimated_cost": "90000",
    "actual_cost": "120000"
  },
  {
    "id": 42
  }
]`

func TestDecodeBookingsSkipsMalformedRows(t *testing.T) {
	bookings, rejected, err := DecodeBookings([]byte(bookingRows))
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Len(t, rejected, 2)

	first := bookings[0]
	assert.Equal(t, "BK-001", first.ID)
	assert.Nil(t, first.Customer.Email)
	assert.Nil(t, first.Notes)
	assert.Equal(t, BookingServicing, first.Status)
	assert.Equal(t, Amount("150000"), first.EstimatedCost)
	assert.Equal(t, PlaceholderActualCost, first.ActualCostLabel())
	assert.Equal(t, PlaceholderTechnician, first.TechnicianLabel(nil))
	require.Len(t, first.Timeline, 2)
	assert.NotNil(t, first.Timeline[0].Timestamp)
	assert.Nil(t, first.Timeline[1].Timestamp)
	assert.NotNil(t, first.CreatedAt)

	second := bookings[1]
	assert.Equal(t, BookingStatus("archived"), second.Status)
	assert.Equal(t, UnknownStatusLabel, second.StatusLabel())
	assert.Equal(t, "120000", second.ActualCostLabel())
	assert.Equal(t, "Andi", second.TechnicianLabel([]Technician{{ID: "tech-1", Name: "Andi"}}))
	assert.Equal(t, "tech-1", second.TechnicianLabel(nil))
	assert.NotNil(t, second.Timeline)
}

func TestDecodeBookingsRejectsNonArray(t *testing.T) {
	_, _, err := DecodeBookings([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestCatalogInputRows(t *testing.T) {
	row := TechnicianInput{Name: " Andi ", Phone: "0812"}.Row()
	assert.Equal(t, "Andi", row["name"])
	assert.Nil(t, row["email"])
	assert.Equal(t, true, row["is_active"])

	assert.Error(t, Validate.Struct(TechnicianInput{Name: "A", Phone: "1", Rating: 7}))
	assert.Error(t, Validate.Struct(ProblemInput{CategoryID: "c", Name: "x", EstimatedCost: "abc"}))
	assert.NoError(t, Validate.Struct(PrinterBrandInput{Name: "Epson"}))
}
