package services

import (
	"fmt"
	"math"
	"strings"

	"streamfinder-backend/internal/models"
)

// Watchmode serves posters with a size token in the filename; swapping the
// small variant for the medium one avoids a separate image request.
const (
	posterSizeSmall  = "poster_w185"
	posterSizeMedium = "poster_w342"
)

// NormalizeTitle converts a raw Watchmode record into a canonical content
// row. Pure function of its inputs: no I/O, no clock, no randomness.
// posterOverride, when non-empty, wins over the provider poster;
// sourceReleaseDate is set only when the record came from an availability
// event.
func NormalizeTitle(raw *models.RawTitle, posterOverride, sourceReleaseDate, posterPlaceholder string) *models.Content {
	content := &models.Content{
		WatchmodeID:   raw.ID,
		IMDBID:        raw.IMDBID,
		TMDBID:        raw.TMDBID,
		Title:         raw.Title,
		Type:          normalizeType(raw.Type),
		Year:          raw.Year,
		EndYear:       raw.EndYear,
		Runtime:       raw.RuntimeMinutes,
		Description:   normalizeDescription(raw),
		PosterURL:     resolvePosterURL(raw.Poster, posterOverride, posterPlaceholder),
		AvgRating:     AverageRating(raw.CriticScore, raw.UserRating),
		CriticsRating: scaleCriticScore(raw.CriticScore),
		UsersRating:   raw.UserRating,
		ReleaseDate:   raw.ReleaseDate,
		ContentRating: raw.USRating,
		LanguageCode:  raw.OriginalLanguage,
		RawData:       string(raw.Raw),
	}

	if raw.OriginalTitle != "" && raw.OriginalTitle != raw.Title {
		original := raw.OriginalTitle
		content.OriginalTitle = &original
	}

	if sourceReleaseDate != "" {
		srd := sourceReleaseDate
		content.SourceReleaseDate = &srd
	}

	return content
}

// NormalizeRelease is NormalizeTitle for an availability event; the
// source release date is carried onto the row.
func NormalizeRelease(release *models.RawRelease, posterOverride, posterPlaceholder string) *models.Content {
	return NormalizeTitle(&release.RawTitle, posterOverride, release.SourceReleaseDate, posterPlaceholder)
}

func normalizeType(rawType string) string {
	if rawType == "tv_series" {
		return models.ContentTypeSeries
	}
	return models.ContentTypeMovie
}

func normalizeDescription(raw *models.RawTitle) string {
	if strings.TrimSpace(raw.PlotOverview) != "" {
		return raw.PlotOverview
	}
	return fmt.Sprintf("A %s from %d", normalizeType(raw.Type), raw.Year)
}

func resolvePosterURL(providerPoster, override, placeholder string) string {
	if override != "" {
		return override
	}
	if providerPoster != "" {
		return strings.Replace(providerPoster, posterSizeSmall, posterSizeMedium, 1)
	}
	return placeholder
}

// AverageRating reconciles the two provider scales: the critic score is
// 0-100, the user rating 0-10. Result is the mean of the present values
// rounded to one decimal; nil when both are absent. A rounded mean of
// exactly 0 is indistinguishable from "unrated" upstream, so it is stored
// as nil rather than a true zero.
func AverageRating(criticScore, userRating *float64) *float64 {
	var sum float64
	var count int

	if criticScore != nil {
		sum += *criticScore / 10
		count++
	}
	if userRating != nil {
		sum += *userRating
		count++
	}
	if count == 0 {
		return nil
	}

	avg := math.Round(sum/float64(count)*10) / 10
	if avg == 0 {
		return nil
	}
	return &avg
}

func scaleCriticScore(criticScore *float64) *float64 {
	if criticScore == nil {
		return nil
	}
	scaled := *criticScore / 10
	return &scaled
}
