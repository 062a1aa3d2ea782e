package config

// DefaultMaxFileSize is the default size limit for processed files.
const (
	DefaultMaxFileSize      = "1MB"
	defaultMaxFileSizeBytes = 1_000_000
)

// DefaultCommonStatements returns the built-in common statements table.
func DefaultCommonStatements() map[string]string {
	return map[string]string{
		"BaseModel":             "from pydantic import BaseModel  # noqa: E0611",
		"BeautifulSoup":         "from bs4 import BeautifulSoup",
		"call":                  "from unittest.mock import call",
		"CaptureFixture":        "from _pytest.capture import CaptureFixture",
		"CliRunner":             "from click.testing import CliRunner",
		"copyfile":              "from shutil import copyfile",
		"datetime":              "from datetime import datetime",
		"dedent":                "from textwrap import dedent",
		"Enum":                  "from enum import Enum",
		"Faker":                 "from faker import Faker",
		"FrozenDateTimeFactory": "from freezegun.api import FrozenDateTimeFactory",
		"LocalPath":             "from py._path.local import LocalPath",
		"LogCaptureFixture":     "from _pytest.logging import LogCaptureFixture",
		"Mock":                  "from unittest.mock import Mock",
		"ModelFactory":          "from pydantic_factories import ModelFactory",
		"patch":                 "from unittest.mock import patch",
		"StringIO":              "from io import StringIO",
		"suppress":              "from contextlib import suppress",
		"TempdirFactory":        "from _pytest.tmpdir import TempdirFactory",
		"YAMLError":             "from yaml import YAMLError",
	}
}
