package configuration

import (
	"strconv"
	"strings"

	"github.com/adampresley/configinator"
)

type Config struct {
	AwsEndpointUrl         string `flag:"awsep" env:"AWS_ENDPOINT_URL" default:"http://localhost:4566" description:"AWS endpoint URL"`
	AwsRegion              string `flag:"awsregion" env:"AWS_REGION" default:"us-central-1" description:"AWS region"`
	AwsAccessKeyId         string `flag:"awsaccesskeyid" env:"AWS_ACCESS_KEY_ID" default:"" description:"AWS access key ID"`
	AwsSecretAccessKey     string `flag:"awssecretaccesskey" env:"AWS_SECRET_ACCESS_KEY" default:"" description:"AWS secret access key"`
	AwsBucket              string `flag:"awsbucket" env:"AWS_BUCKET" default:"galleries" description:"S3 bucket for gallery images"`
	DSN                    string `flag:"dsn" env:"DSN" default:"file:./data/galleryd.db" description:"Data source name"`
	Host                   string `flag:"host" env:"HOST" default:"localhost:8081" description:"The address and port to bind the HTTP server to"`
	LogLevel               string `flag:"loglevel" env:"LOG_LEVEL" default:"debug" description:"The log level to use. Valid values are 'debug', 'info', 'warn', and 'error'"`
	MaxProcessWorkers      int    `flag:"mpw" env:"MAX_PROCESS_WORKERS" default:"4" description:"Maximum number of concurrent variant workers per stack"`
	ProcessIntervalMinutes int    `flag:"pim" env:"PROCESS_INTERVAL_MINUTES" default:"60" description:"Minutes between runs of the pending stack processor. 0 disables it"`
	VariantsFolder         string `flag:"vf" env:"VARIANTS_FOLDER" default:"variants" description:"S3 folder for generated variants"`
	VariantWidths          string `flag:"vw" env:"VARIANT_WIDTHS" default:"1920,1200,600,300" description:"Comma separated widths, in pixels, of generated variants"`
}

func LoadConfig() Config {
	config := Config{}
	configinator.Behold(&config)
	return config
}

/*
VariantWidthList parses VariantWidths. Entries that are not positive
integers are skipped.
*/
func (c Config) VariantWidthList() []uint {
	result := []uint{}

	for _, part := range strings.Split(c.VariantWidths, ",") {
		width, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || width == 0 {
			continue
		}

		result = append(result, uint(width))
	}

	return result
}
