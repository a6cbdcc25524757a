package s3

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"firds/shared/config"
)

// Keys of the JSON map stored in the credentials secret
const (
	secretAccessKeyID     = "access_key_id"
	secretSecretAccessKey = "secret_access_key"
	secretSessionToken    = "session_token"
)

// SecretsClient is the subset of the Secrets Manager client used here
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// newSecretsClient is replaced in tests
var newSecretsClient = func(ctx context.Context, region string) (SecretsClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// resolveCredentials picks static keys, then the configured secret, and
// returns nil to fall back to the default AWS credential chain
func resolveCredentials(ctx context.Context, s3Config config.S3Config) (aws.CredentialsProvider, error) {
	if s3Config.AccessKeyID != "" && s3Config.SecretAccessKey != "" {
		return credentials.NewStaticCredentialsProvider(
			s3Config.AccessKeyID,
			s3Config.SecretAccessKey,
			s3Config.SessionToken,
		), nil
	}

	if s3Config.CredentialsSecretID == "" {
		return nil, nil
	}

	client, err := newSecretsClient(ctx, s3Config.Region)
	if err != nil {
		return nil, err
	}

	secret, err := fetchSecret(ctx, client, s3Config.CredentialsSecretID)
	if err != nil {
		return nil, err
	}

	accessKey, secretKey := secret[secretAccessKeyID], secret[secretSecretAccessKey]
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("secret [%s] must contain %s and %s",
			s3Config.CredentialsSecretID, secretAccessKeyID, secretSecretAccessKey)
	}

	return credentials.NewStaticCredentialsProvider(accessKey, secretKey, secret[secretSessionToken]), nil
}

// fetchSecret fetches and decodes a JSON map secret
func fetchSecret(ctx context.Context, client SecretsClient, id string) (map[string]string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secret [%s]: %w", id, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret [%s] has no string value", id)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &result); err != nil {
		return nil, fmt.Errorf("invalid secret format for [%s]: %w", id, err)
	}
	return result, nil
}
