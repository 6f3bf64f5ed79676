package cmdb

import (
	"context"
	"fmt"
	"os"
	"strings"

	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Environment variables holding CMDB credentials.
const (
	EnvUser     = "SNOW_USER"
	EnvPassword = "SNOW_PASSWORD"
)

// Secret keys holding CMDB credentials.
const (
	SecretUsernameKey = "username"
	SecretPasswordKey = "password"
)

// Credentials authenticate against the table API.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no username was provided.
func (c Credentials) IsZero() bool {
	return c.Username == ""
}

// String hides the password.
func (c Credentials) String() string {
	return c.Username + ":****"
}

// CredentialsFromEnv reads SNOW_USER and SNOW_PASSWORD.
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{
		Username: os.Getenv(EnvUser),
		Password: os.Getenv(EnvPassword),
	}
	if c.Username == "" || c.Password == "" {
		return Credentials{}, cmderrors.New(cmderrors.ErrCodeUnauthorized,
			"cmdb credentials not set: "+EnvUser+" and "+EnvPassword+" are required")
	}
	return c, nil
}

// ParseSecretRef splits a "namespace/name" reference.
func ParseSecretRef(ref string) (namespace, name string, err error) {
	namespace, name, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", cmderrors.New(cmderrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid secret reference %q: expected namespace/name", ref))
	}
	return namespace, name, nil
}

// CredentialsFromSecret reads credentials from the Secret named by ref.
func CredentialsFromSecret(ctx context.Context, client kubernetes.Interface, ref string) (Credentials, error) {
	namespace, name, err := ParseSecretRef(ref)
	if err != nil {
		return Credentials{}, err
	}

	secret, err := client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		code := cmderrors.ErrCodeUnavailable
		switch {
		case apierrors.IsNotFound(err):
			code = cmderrors.ErrCodeNotFound
		case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
			code = cmderrors.ErrCodeUnauthorized
		}
		return Credentials{}, cmderrors.WrapWithContext(code, "failed to read credentials secret", err,
			map[string]any{"namespace": namespace, "name": name})
	}

	c := Credentials{
		Username: string(secret.Data[SecretUsernameKey]),
		Password: string(secret.Data[SecretPasswordKey]),
	}
	if c.Username == "" || c.Password == "" {
		return Credentials{}, cmderrors.WrapWithContext(cmderrors.ErrCodeUnauthorized,
			"credentials secret is missing username or password", nil,
			map[string]any{"namespace": namespace, "name": name})
	}
	return c, nil
}
