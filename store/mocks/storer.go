// Package mocks contains a mock of the store package interfaces
package mocks

import (
	"github.com/spottedbot/spotted/store"
	"github.com/stretchr/testify/mock"
)

// ScoreStorer holds a mock to implement a mock of ScoreStorer
type ScoreStorer struct {
	mock.Mock
}

// GetScore mocks an implementation of GetScore
func (ms *ScoreStorer) GetScore(userID string) (points int, err error) {
	args := ms.Called(userID)

	return args.Int(0), args.Error(1)
}

// UpdateScore mocks an implementation of UpdateScore
func (ms *ScoreStorer) UpdateScore(userID string, delta int, displayName string) (newTotal int, err error) {
	args := ms.Called(userID, delta, displayName)

	return args.Int(0), args.Error(1)
}

// Scan mocks an implementation of Scan
func (ms *ScoreStorer) Scan() (entries []store.ScoreEntry, err error) {
	args := ms.Called()

	return args.Get(0).([]store.ScoreEntry), args.Error(1)
}

// Top mocks an implementation of Top
func (ms *ScoreStorer) Top(count int) (entries []store.ScoreEntry, err error) {
	args := ms.Called(count)

	return args.Get(0).([]store.ScoreEntry), args.Error(1)
}

// Worst mocks an implementation of Worst
func (ms *ScoreStorer) Worst(count int) (entries []store.ScoreEntry, err error) {
	args := ms.Called(count)

	return args.Get(0).([]store.ScoreEntry), args.Error(1)
}

// ResetAll mocks an implementation of ResetAll
func (ms *ScoreStorer) ResetAll() (err error) {
	args := ms.Called()

	return args.Error(0)
}

// Close mocks an implementation of Close
func (ms *ScoreStorer) Close() (err error) {
	args := ms.Called()

	return args.Error(0)
}
