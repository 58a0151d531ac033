package service

import (
	"cmp"
	"slices"

	"psocial/internal/models"
)

// SortMode orders a feed. It is presentation state and never persisted.
type SortMode string

const (
	SortNew      SortMode = "new"
	SortLikes    SortMode = "likes"
	SortTrending SortMode = "trending"
)

// ParseSortMode falls back to SortNew for unknown values.
func ParseSortMode(v string) SortMode {
	switch m := SortMode(v); m {
	case SortLikes, SortTrending:
		return m
	}
	return SortNew
}

// SortPosts returns a sorted copy. Ties keep their input order.
func SortPosts(posts []models.Post, mode SortMode) []models.Post {
	out := slices.Clone(posts)
	switch mode {
	case SortLikes:
		slices.SortStableFunc(out, func(a, b models.Post) int {
			return cmp.Compare(len(b.Likes), len(a.Likes))
		})
	case SortTrending:
		slices.SortStableFunc(out, func(a, b models.Post) int {
			return cmp.Compare(b.TrendingScore(), a.TrendingScore())
		})
	default:
		slices.SortStableFunc(out, func(a, b models.Post) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}
