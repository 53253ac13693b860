package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a stored analysis or comparison does not exist.
	ErrNotFound = errors.New("domain: not found")
	// ErrInsufficientSignal indicates too little voiced content to analyze.
	ErrInsufficientSignal = errors.New("insufficient signal")
	// ErrCalibrationViolation indicates a score or fit left its valid range.
	ErrCalibrationViolation = errors.New("calibration violation")
	// ErrNotEnoughHistory indicates growth tracking needs at least two analyses.
	ErrNotEnoughHistory = errors.New("domain: not enough history")
	// ErrInvalidCalibration indicates a calibration value failed validation.
	ErrInvalidCalibration = errors.New("invalid calibration")
	// ErrInvalidAudio indicates a recording could not be decoded.
	ErrInvalidAudio = errors.New("invalid audio")
)

// InsufficientSignalError describes why a recording could not be analyzed.
type InsufficientSignalError struct {
	Reason          string
	DurationSeconds float64
	VoicedSeconds   float64
}

func (e *InsufficientSignalError) Error() string {
	if e.Reason == "" {
		return ErrInsufficientSignal.Error()
	}
	return fmt.Sprintf("insufficient signal: %s (duration %.2fs, voiced %.2fs)", e.Reason, e.DurationSeconds, e.VoicedSeconds)
}

func (e *InsufficientSignalError) Is(target error) bool {
	return target == ErrInsufficientSignal
}

// CalibrationViolationError is an internal invariant failure. It is fatal for the call.
type CalibrationViolationError struct {
	Stage string
	Field string
	Value float64
}

func (e *CalibrationViolationError) Error() string {
	return fmt.Sprintf("calibration violation in %s: %s = %v", e.Stage, e.Field, e.Value)
}

func (e *CalibrationViolationError) Is(target error) bool {
	return target == ErrCalibrationViolation
}
