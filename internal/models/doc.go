// Package models defines the core domain rows for budbudbud.
//
// Relationships are expressed with ID strings rather than pointers to avoid
// circular references; timestamps are Unix seconds. Nullable columns
// (verification timestamps, a vote's place) use pointer fields.
package models
