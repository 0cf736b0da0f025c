package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seat-booking/internal/model"
)

func bookedSeat() model.Seat {
	id, name := "u-1", "Alice"
	at := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	return model.Seat{ID: 3, SeatNumber: "A3", Status: model.SeatBooked, ClaimantID: &id, ClaimantName: &name, BookedAt: &at}
}

func TestNewSeatBookedEvent(t *testing.T) {
	ev := NewSeatBookedEvent(bookedSeat())
	_, err := uuid.Parse(ev.EventID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ev.SeatID)
	assert.Equal(t, "u-1", ev.ClaimantID)
	assert.Equal(t, "Alice", ev.ClaimantName)
	assert.Equal(t, "2024-03-01T18:30:00Z", ev.BookedAt)

	other := NewSeatBookedEvent(bookedSeat())
	assert.NotEqual(t, ev.EventID, other.EventID)
}

func TestHandleMessageAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	booked, err := json.Marshal(NewSeatBookedEvent(bookedSeat()))
	require.NoError(t, err)
	rv := model.Review{ID: 7, ClaimantID: "u-1", AverageScore: 0.0667, OverallRating: "average", CreatedAt: time.Now()}
	reviewed, err := json.Marshal(NewReviewRecordedEvent(bookedSeat(), rv))
	require.NoError(t, err)

	require.NoError(t, handleMessage(dir, SeatBookedQueue, booked))
	require.NoError(t, handleMessage(dir, ReviewRecordedQueue, reviewed))

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Seat booked | seat_id=3 | seat=A3 | claimant_id=u-1 | claimant=\"Alice\"")
	assert.Contains(t, lines[1], "Review recorded | review_id=7 | seat_id=3")
	assert.Contains(t, lines[1], "rating=average | average_score=0.0667")
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage(dir, SeatBookedQueue, []byte("{")))
	assert.Error(t, handleMessage(dir, "elsewhere", []byte("{}")))
	_, err := os.Stat(filepath.Join(dir, LogFileName))
	assert.True(t, os.IsNotExist(err))
}
