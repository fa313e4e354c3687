package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                 string        `envconfig:"PORT" default:"8080"`
	AWSRegion            string        `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	ProductTableName     string        `envconfig:"PRODUCT_TABLE_NAME" default:"products"`
	OrderTableName       string        `envconfig:"ORDER_TABLE_NAME" default:"orders"`
	IdempotencyTableName string        `envconfig:"IDEMPOTENCY_TABLE_NAME" default:"idempotency"`
	AuditTableName       string        `envconfig:"AUDIT_TABLE_NAME" default:"audit_log"`
	IdempotencyTTL       time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	KafkaBrokers         string        `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	OrderTopic           string        `envconfig:"ORDER_TOPIC" default:"order-events"`
	CompensationTopic    string        `envconfig:"COMPENSATION_TOPIC" default:"compensation-events"`
	LogLevel             string        `envconfig:"LOG_LEVEL" default:"info"`
	DynamoDBEndpoint     string        `envconfig:"DYNAMODB_ENDPOINT" default:""` // DynamoDB Local 엔드포인트
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
