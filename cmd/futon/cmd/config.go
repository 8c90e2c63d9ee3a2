// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package cmd

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "FUTON"

// config is the resolved configuration. Flags take precedence over FUTON_*
// environment variables, which take precedence over the config file.
type config struct {
	URL      string `mapstructure:"url" validate:"required"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Debug    bool   `mapstructure:"debug"`
	Retries  uint64 `mapstructure:"retries" validate:"lte=100"`
	Output   string `mapstructure:"output" validate:"oneof=json yaml"`
}

var validate = validator.New()

func resolveHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	return filepath.Join(usr.HomeDir, path[2:])
}

// loadConfig merges flags, environment and the config file. A missing config
// file is only an error if it was named explicitly.
func loadConfig(flags *pflag.FlagSet, file string, explicit bool) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	if file != "" {
		file = resolveHome(file)
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if explicit || !os.IsNotExist(errors.Cause(err)) {
				return nil, errors.Wrapf(err, "read config %s", file)
			}
		}
	}
	conf := &config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := validate.Struct(conf); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return conf, nil
}
