// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package models defines the persisted entities and discovery results shared
// across the aemctl packages: environment profiles, AEM instances, licenses,
// Maven configurations, and the candidate artifacts produced by filesystem
// scans.
//
// Entities carry both JSON tags (persistence and the HTTP API) and YAML tags
// (export files). Validation tags are enforced at the input boundary via
// go-playground/validator; stores assume inputs were already validated.
package models

import (
	"fmt"
	"time"
)

// =============================================================================
// Discovery
// =============================================================================

// Candidate is a filesystem object discovered by a scan that has not been
// imported into persisted state. Identity is the exact Path.
type Candidate struct {
	// Path is the absolute on-disk location. Case-sensitive, exact.
	Path string `json:"path"`

	// Name is the display name suggested by the scanner, usually the
	// file or directory basename.
	Name string `json:"name"`

	// ParentDirectory is the basename of the directory containing Path.
	ParentDirectory string `json:"parentDirectory"`

	// ProductName is set for license candidates only.
	ProductName string `json:"productName,omitempty"`

	// CustomerName is set for license candidates only.
	CustomerName string `json:"customerName,omitempty"`

	// LocalRepository is set for Maven settings candidates when the
	// file declares a <localRepository>.
	LocalRepository string `json:"localRepository,omitempty"`
}

// JavaInstallation is a JVM discovered under one of the scan roots.
type JavaInstallation struct {
	Path         string `json:"path"`
	Version      string `json:"version"`      // e.g. "17.0.1"
	MajorVersion string `json:"majorVersion"` // e.g. "17"
	Vendor       string `json:"vendor"`       // e.g. "Eclipse Adoptium"
}

// NodeInstallation is a Node.js version discovered under a version
// manager root or on the system path.
type NodeInstallation struct {
	Path    string `json:"path"`
	Version string `json:"version"` // normalized without the "v" prefix
}

// VersionManagerKind identifies a supported version manager.
type VersionManagerKind string

const (
	ManagerSDKMan VersionManagerKind = "sdkman"
	ManagerNVM    VersionManagerKind = "nvm"
	ManagerFNM    VersionManagerKind = "fnm"
	ManagerSystem VersionManagerKind = "system"
)

// VersionManager is a detected Java/Node version manager installation.
type VersionManager struct {
	ID   string             `json:"id"`
	Name string             `json:"name"`
	Kind VersionManagerKind `json:"kind"`
	Root string             `json:"root"`
}

// =============================================================================
// Maven
// =============================================================================

// MavenConfig is an imported Maven settings.xml registration.
//
// At most one config has IsActive=true; the store flips the previous
// active config off when a new one is switched in.
type MavenConfig struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name" validate:"required,min=1,max=128"`
	Path            string    `json:"path" yaml:"path" validate:"required"`
	LocalRepository string    `json:"localRepository,omitempty" yaml:"localRepository,omitempty"`
	IsActive        bool      `json:"isActive" yaml:"isActive"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
}

// =============================================================================
// Licenses
// =============================================================================

// LicenseStatus is derived from expiry date and file readability. The
// store recomputes it on every write; clients only display and filter.
type LicenseStatus string

const (
	LicenseValid    LicenseStatus = "valid"
	LicenseExpiring LicenseStatus = "expiring"
	LicenseExpired  LicenseStatus = "expired"
	LicenseInvalid  LicenseStatus = "invalid"
	LicenseUnknown  LicenseStatus = "unknown"
)

// License is a registered AEM license.properties record.
type License struct {
	ID                   string        `json:"id" yaml:"id"`
	Name                 string        `json:"name" yaml:"name" validate:"required,min=1,max=128"`
	LicenseKey           string        `json:"licenseKey,omitempty" yaml:"licenseKey,omitempty"`
	LicenseFilePath      string        `json:"licenseFilePath,omitempty" yaml:"licenseFilePath,omitempty"`
	ProductName          string        `json:"productName" yaml:"productName" validate:"required"`
	ProductVersion       string        `json:"productVersion,omitempty" yaml:"productVersion,omitempty"`
	CustomerName         string        `json:"customerName,omitempty" yaml:"customerName,omitempty"`
	DownloadID           string        `json:"downloadId,omitempty" yaml:"downloadId,omitempty"`
	ExpiryDate           string        `json:"expiryDate,omitempty" yaml:"expiryDate,omitempty"` // YYYY-MM-DD
	AssociatedInstanceID string        `json:"associatedInstanceId,omitempty" yaml:"associatedInstanceId,omitempty"`
	Notes                string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	Status               LicenseStatus `json:"status" yaml:"status"`
}

// ParsedLicense is the result of reading a license.properties file,
// before any record is created from it.
type ParsedLicense struct {
	LicenseKey     string `json:"licenseKey,omitempty"`
	ProductName    string `json:"productName,omitempty"`
	ProductVersion string `json:"productVersion,omitempty"`
	CustomerName   string `json:"customerName,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	DownloadID     string `json:"downloadId,omitempty"`
}

// =============================================================================
// Profiles
// =============================================================================

// Profile is a named bundle of version, config, and instance selections.
//
// At most one profile is active across the whole collection. Activating
// one deactivates the previous active profile in the same store write.
// Every selection field is independently optional.
type Profile struct {
	ID                string            `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name" validate:"required,min=1,max=128"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty" validate:"max=1024"`
	JavaVersion       string            `json:"javaVersion,omitempty" yaml:"javaVersion,omitempty"`
	JavaPath          string            `json:"javaPath,omitempty" yaml:"javaPath,omitempty"`
	JavaManagerID     string            `json:"javaManagerId,omitempty" yaml:"javaManagerId,omitempty"`
	NodeVersion       string            `json:"nodeVersion,omitempty" yaml:"nodeVersion,omitempty"`
	NodePath          string            `json:"nodePath,omitempty" yaml:"nodePath,omitempty"`
	NodeManagerID     string            `json:"nodeManagerId,omitempty" yaml:"nodeManagerId,omitempty"`
	MavenConfigID     string            `json:"mavenConfigId,omitempty" yaml:"mavenConfigId,omitempty"`
	AuthorInstanceID  string            `json:"authorInstanceId,omitempty" yaml:"authorInstanceId,omitempty"`
	PublishInstanceID string            `json:"publishInstanceId,omitempty" yaml:"publishInstanceId,omitempty"`
	EnvVars           map[string]string `json:"envVars,omitempty" yaml:"envVars,omitempty"`
	IsActive          bool              `json:"isActive" yaml:"isActive"`
	CreatedAt         time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// SwitchResult reports the outcome of a profile activation or version
// switch. Success and the per-subsystem error list are independent:
// a profile can be marked active even when some side effects failed.
type SwitchResult struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}

// =============================================================================
// Instances
// =============================================================================

// InstanceType is the role a local AEM process plays.
type InstanceType string

const (
	InstanceAuthor     InstanceType = "author"
	InstancePublish    InstanceType = "publish"
	InstanceDispatcher InstanceType = "dispatcher"
)

// InstanceStatus is the lifecycle state of an instance process.
//
// stopped -> starting -> running -> stopping -> stopped is the normal
// cycle; starting and stopping are set optimistically before the
// process state is confirmed. The remaining values come from hybrid
// status detection: error for a failed launch, port_conflict when the
// port is owned by a non-Java process, unknown when detection itself
// failed.
type InstanceStatus string

const (
	StatusStopped      InstanceStatus = "stopped"
	StatusStarting     InstanceStatus = "starting"
	StatusRunning      InstanceStatus = "running"
	StatusStopping     InstanceStatus = "stopping"
	StatusError        InstanceStatus = "error"
	StatusUnknown      InstanceStatus = "unknown"
	StatusPortConflict InstanceStatus = "port_conflict"
)

// Instance is a locally managed AEM server process.
type Instance struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name" validate:"required,min=1,max=128"`
	InstanceType InstanceType   `json:"instanceType" yaml:"instanceType" validate:"required,oneof=author publish dispatcher"`
	Host         string         `json:"host" yaml:"host" validate:"required,hostname|ip"`
	Port         int            `json:"port" yaml:"port" validate:"required,min=1,max=65535"`
	Path         string         `json:"path" yaml:"path" validate:"required"`
	JavaOpts     string         `json:"javaOpts,omitempty" yaml:"javaOpts,omitempty"`
	RunModes     []string       `json:"runModes,omitempty" yaml:"runModes,omitempty"`
	Status       InstanceStatus `json:"status" yaml:"status"`
	PID          int            `json:"pid,omitempty" yaml:"-"`
}

// URL returns the instance base URL.
func (i Instance) URL() string {
	host := i.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, i.Port)
}

// HealthReport holds the result of an explicit health check against a
// running instance's Felix console.
type HealthReport struct {
	Reachable     bool      `json:"reachable"`
	BundlesTotal  int       `json:"bundlesTotal"`
	BundlesActive int       `json:"bundlesActive"`
	HeapUsedMB    int       `json:"heapUsedMb"`
	HeapMaxMB     int       `json:"heapMaxMb"`
	ProductInfo   string    `json:"productInfo,omitempty"`
	CheckedAt     time.Time `json:"checkedAt"`
}
