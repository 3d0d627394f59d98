package config_test

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	bbconfig "bootbridge/internal/config"
	"bootbridge/internal/mocks"
	"bootbridge/internal/services/config"
	"bootbridge/internal/testutil"
)

// RepositoryTestSuite provides common setup for repository tests.
type RepositoryTestSuite struct {
	suite.Suite

	ctx        context.Context
	mockFS     *mocks.MockFileSystemAdapter
	configDir  string
	configPath string
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockFS = mocks.NewMockFileSystemAdapter(s.T())
	s.configDir = "/home/user/.config/bootbridge"
	s.configPath = s.configDir + "/config.yaml"
}

func (s *RepositoryTestSuite) repository() *config.Repository {
	return config.NewRepository(s.mockFS, s.configPath, testutil.Logger())
}

func (s *RepositoryTestSuite) TestSave_WritesDefaultsAsNestedYAML() {
	var written []byte
	s.mockFS.On("Stat", s.configPath).Return(nil, os.ErrNotExist).Once()
	s.mockFS.On("MkdirAll", s.configDir, os.FileMode(0o700)).Return(nil).Once()
	s.mockFS.On("WriteFile", s.configPath, mock.AnythingOfType("[]uint8"), os.FileMode(0o600)).
		Run(func(args mock.Arguments) { written = args.Get(1).([]byte) }).
		Return(nil).Once()

	s.Require().NoError(s.repository().Save(s.ctx, bbconfig.Default(), false))

	var doc map[string]map[string]any
	s.Require().NoError(yaml.Unmarshal(written, &doc))
	s.Equal("home", doc["gate"]["terminal_marker"])
	s.Equal("100ms", doc["bridge"]["poll_interval"])

	// The written file round-trips through viper.
	v := viper.New()
	v.SetConfigType("yaml")
	s.Require().NoError(v.ReadConfig(bytes.NewReader(written)))
	cfg, err := bbconfig.Load(v)
	s.Require().NoError(err)
	s.Equal(100*time.Millisecond, cfg.Bridge.PollInterval)
	s.Equal(bbconfig.Default(), *cfg)
}

func (s *RepositoryTestSuite) TestSave_RefusesToOverwrite() {
	s.mockFS.On("Stat", s.configPath).Return(nil, nil).Once()

	err := s.repository().Save(s.ctx, bbconfig.Default(), false)

	s.Require().ErrorIs(err, config.ErrConfigExists)
	s.mockFS.AssertNotCalled(s.T(), "WriteFile", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RepositoryTestSuite) TestSave_ForceOverwrites() {
	s.mockFS.On("MkdirAll", s.configDir, os.FileMode(0o700)).Return(nil).Once()
	s.mockFS.On("WriteFile", s.configPath, mock.Anything, os.FileMode(0o600)).Return(nil).Once()

	s.Require().NoError(s.repository().Save(s.ctx, bbconfig.Default(), true))
	s.mockFS.AssertNotCalled(s.T(), "Stat", mock.Anything)
}

func (s *RepositoryTestSuite) TestSave_WriteFailure() {
	s.mockFS.On("Stat", s.configPath).Return(nil, os.ErrNotExist).Once()
	s.mockFS.On("MkdirAll", s.configDir, os.FileMode(0o700)).Return(nil).Once()
	s.mockFS.On("WriteFile", s.configPath, mock.Anything, os.FileMode(0o600)).Return(os.ErrPermission).Once()

	err := s.repository().Save(s.ctx, bbconfig.Default(), false)

	s.Require().ErrorIs(err, os.ErrPermission)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestProvider_GetConfigPath(t *testing.T) {
	fs := mocks.NewMockFileSystemAdapter(t)
	fs.On("UserHomeDir").Return("/home/user", nil)

	path, err := config.NewProvider(fs).GetConfigPath()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/home/user/.config/bootbridge/config.yaml" {
		t.Errorf("GetConfigPath() = %q", path)
	}
}

func TestProvider_HomeDirError(t *testing.T) {
	fs := mocks.NewMockFileSystemAdapter(t)
	fs.On("UserHomeDir").Return("", os.ErrNotExist)

	if _, err := config.NewProvider(fs).GetConfigPath(); err == nil {
		t.Error("expected an error when the home directory is unknown")
	}
}
