package planner

import (
	"errors"
	"fmt"
)

// PlanRequest is the body of POST /plan. Positions are planner-frame
// ground coordinates, headings are radians.
type PlanRequest struct {
	SX    float64 `json:"sx"`
	SY    float64 `json:"sy"`
	SYaw  float64 `json:"syaw"`  // towing vehicle heading
	STYaw float64 `json:"styaw"` // towed object heading
	GX    float64 `json:"gx"`
	GY    float64 `json:"gy"`
	GYaw  float64 `json:"gyaw"`
	GTYaw float64 `json:"gtyaw"`

	XYReso  float64 `json:"xyreso"`
	YawReso float64 `json:"yawreso"`

	OX []float64 `json:"ox"`
	OY []float64 `json:"oy"`
}

// PlanResponse is the planner's answer. X, Y, Yaw and Yaw1 are
// index-paired samples along the path in the planner frame; Yaw belongs to
// the towing vehicle and Yaw1 to the towed object.
type PlanResponse struct {
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Length    int       `json:"length,omitempty"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Yaw       []float64 `json:"yaw"`
	Yaw1      []float64 `json:"yaw1"`
	Direction []int     `json:"direction,omitempty"`
	Cost      float64   `json:"cost"`
}

var (
	// ErrEmptyPath means the response carries no path samples.
	ErrEmptyPath = errors.New("empty path")

	// ErrLengthMismatch means the path channels are not index-paired.
	ErrLengthMismatch = errors.New("path channel lengths differ")
)

// Failure builds a response describing a failed request.
func Failure(msg string) *PlanResponse {
	return &PlanResponse{OK: false, Error: msg}
}

// Validate checks the path channels of a response.
func (r *PlanResponse) Validate() error {
	nx, ny, nyaw, nyaw1 := len(r.X), len(r.Y), len(r.Yaw), len(r.Yaw1)
	if nx != ny || nx != nyaw || nx != nyaw1 {
		return fmt.Errorf("%w: x=%d y=%d yaw=%d yaw1=%d", ErrLengthMismatch, nx, ny, nyaw, nyaw1)
	}
	if nx == 0 {
		return ErrEmptyPath
	}
	return nil
}

// PointCount returns the number of displayable path points, min(len x, len y).
func (r *PlanResponse) PointCount() int {
	return min(len(r.X), len(r.Y))
}

// SampleCount returns the number of samples usable for motion, the
// shortest of the four path channels.
func (r *PlanResponse) SampleCount() int {
	return min(len(r.X), len(r.Y), len(r.Yaw), len(r.Yaw1))
}
