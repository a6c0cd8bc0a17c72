package storage

// Config selects the audio storage backend.
type Config struct {
	Driver    string `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalRoot string `env:"STORAGE_LOCAL_ROOT" envDefault:"./data"`
	BaseURL   string `env:"STORAGE_BASE_URL" envDefault:"/media"`
}

// Storage drivers accepted by Config.Driver.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)
