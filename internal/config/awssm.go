package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// resolveAWSSecretsManager resolves ${AWS_SM:secret-id} to the whole secret
// string, or ${AWS_SM:secret-id#key} to one field of a JSON secret such as
// the credentials RDS stores for a managed database.
func resolveAWSSecretsManager(ref string) (string, error) {
	id, key, hasKey := strings.Cut(ref, "#")
	if id == "" || (hasKey && key == "") {
		return "", fmt.Errorf("invalid AWS Secrets Manager reference %q: expected secret-id or secret-id#key", ref)
	}

	ctx, cancel := context.WithTimeout(context.Background(), secretTimeout)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("loading AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(cfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %q: %w", id, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value (binary secrets not supported)", id)
	}
	if !hasKey {
		return *out.SecretString, nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(*out.SecretString), &fields); err != nil {
		return "", fmt.Errorf("secret %q is not a JSON object: %w", id, err)
	}
	return secretField(fields, key, fmt.Sprintf("secret %q", id))
}
