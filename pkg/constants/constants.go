// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package constants

const (
	// DefaultGitHubAPIURL is used when GITHUB_API_URL is not set
	DefaultGitHubAPIURL = "https://api.github.com"

	// DefaultGitLabAPIURL is used when neither GITLAB_API_URL nor CI_SERVER_URL is set
	DefaultGitLabAPIURL = "https://gitlab.com/api/v4"

	// EnvPrefix prefixes every environment variable read through viper
	EnvPrefix = "SEMANTIC_DRIFT"
)
