// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// AppBuildInfo is the version, date and commit injected into a binary with
// -ldflags. Unset values print as "N/A".
type AppBuildInfo struct {
	version string
	date    string
	commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{version: version, date: date, commit: commit}
}

// BuildVersion returns the raw version, "" when none was injected.
func (a AppBuildInfo) BuildVersion() string { return a.version }

// BuildField is one labelled line of build output.
type BuildField struct {
	Label string
	Value string
}

// Fields lists the build values in display order.
func (a AppBuildInfo) Fields() []BuildField {
	return []BuildField{
		{Label: "Build version", Value: orNA(a.version)},
		{Label: "Build date", Value: orNA(a.date)},
		{Label: "Build commit", Value: orNA(a.commit)},
	}
}

func (a AppBuildInfo) String() string {
	return "version " + orNA(a.version) + ", built " + orNA(a.date) + ", commit " + orNA(a.commit)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
