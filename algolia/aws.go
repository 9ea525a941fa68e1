package algolia

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
)

// SecretsManagerClient defines the interface for AWS Secrets Manager operations.
type SecretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecrets returns a FetchSecrets function that retrieves Algolia credentials
// from AWS Secrets Manager. The secret is expected to be stored at the path
// "{environment}/algolia" and contain JSON with app_id and api_key fields.
func AWSSecrets(ctx context.Context, client SecretsManagerClient, env string) FetchSecrets {
	secretPath := fmt.Sprintf("%s/algolia", env)
	return secretsFrom(ctx, client, secretPath, "at path "+secretPath)
}

// AWSSecretsFromARN returns a FetchSecrets function that retrieves Algolia
// credentials from the secret with the given ARN.
func AWSSecretsFromARN(ctx context.Context, client SecretsManagerClient, secretArn string) FetchSecrets {
	return secretsFrom(ctx, client, secretArn, "with ARN "+secretArn)
}

func secretsFrom(ctx context.Context, client SecretsManagerClient, secretID, where string) FetchSecrets {
	return func() (Secrets, error) {
		result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretID),
		})
		if err != nil {
			return Secrets{}, errors.Wrapf(err, "failed to get secret from AWS Secrets Manager %s", where)
		}

		if result.SecretString == nil {
			return Secrets{}, errors.Newf("secret %s has no string value", where)
		}

		var secrets Secrets
		if err := json.Unmarshal([]byte(aws.ToString(result.SecretString)), &secrets); err != nil {
			return Secrets{}, errors.Wrapf(err, "failed to unmarshal secret JSON %s", where)
		}

		return secrets, nil
	}
}
