package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("shooter@example.com", "hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}

func TestHashPassword_Validation(t *testing.T) {
	_, err := HashPassword("", "hunter2")
	require.Error(t, err)

	_, err = HashPassword("shooter@example.com", "   ")
	require.Error(t, err)
}

func TestBulletRequestValidate(t *testing.T) {
	req := bulletRequest{Manufacturer: "  Hornady ", Model: " ELD-M ", WeightGr: 147}
	require.NoError(t, req.validate())
	assert.Equal(t, "Hornady", req.Manufacturer)
	assert.Equal(t, "ELD-M", req.Model)

	assert.Error(t, (&bulletRequest{Model: "ELD-M", WeightGr: 147}).validate())
	assert.Error(t, (&bulletRequest{Manufacturer: "Hornady", WeightGr: 147}).validate())
	assert.Error(t, (&bulletRequest{Manufacturer: "Hornady", Model: "ELD-M"}).validate())
	assert.Error(t, (&bulletRequest{Manufacturer: "Hornady", Model: "ELD-M", WeightGr: -1}).validate())
}

func TestCartridgeRequestValidate(t *testing.T) {
	req := cartridgeRequest{Make: "Hornady", Model: "Match", CartridgeType: "6.5 Creedmoor", BulletID: 3}
	require.NoError(t, req.validate())

	assert.Error(t, (&cartridgeRequest{Model: "Match", CartridgeType: "6.5 Creedmoor", BulletID: 3}).validate())
	assert.Error(t, (&cartridgeRequest{Make: "Hornady", Model: "Match", CartridgeType: "6.5 Creedmoor"}).validate())
}

func TestRifleRequestValidate(t *testing.T) {
	require.NoError(t, (&rifleRequest{Name: "Tikka T3x"}).validate())
	assert.Error(t, (&rifleRequest{Name: "   "}).validate())
}

func TestRangeSubmissionRequestValidate(t *testing.T) {
	ok := rangeSubmissionRequest{
		RangeName: "Pawnee Grasslands",
		StartLat:  40.7, StartLon: -104.4,
		EndLat: 40.71, EndLon: -104.4,
	}
	require.NoError(t, ok.validate())

	bad := ok
	bad.RangeName = ""
	assert.Error(t, bad.validate())

	bad = ok
	bad.StartLat = 97
	assert.Error(t, bad.validate())

	bad = ok
	bad.EndLon = -200
	assert.Error(t, bad.validate())
}

func TestDopeSessionRequestValidate(t *testing.T) {
	ok := dopeSessionRequest{SessionName: "1000yd ladder", ChronoSessionID: 1, CartridgeID: 2, RifleID: 3}
	require.NoError(t, ok.validate())

	bad := ok
	bad.SessionName = " "
	assert.Error(t, bad.validate())

	bad = ok
	bad.ChronoSessionID = 0
	assert.Error(t, bad.validate())

	bad = ok
	bad.CartridgeID = 0
	assert.Error(t, bad.validate())

	bad = ok
	bad.RifleID = 0
	assert.Error(t, bad.validate())
}
