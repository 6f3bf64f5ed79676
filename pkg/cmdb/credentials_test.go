package cmdb

import (
	"context"
	"testing"

	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestCredentialsFromEnv(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		t.Setenv(EnvUser, "svc")
		t.Setenv(EnvPassword, "pw")

		c, err := CredentialsFromEnv()
		require.NoError(t, err)
		assert.Equal(t, Credentials{Username: "svc", Password: "pw"}, c)
		assert.Equal(t, "svc:****", c.String())
	})

	t.Run("missing password", func(t *testing.T) {
		t.Setenv(EnvUser, "svc")
		t.Setenv(EnvPassword, "")

		_, err := CredentialsFromEnv()
		require.Error(t, err)
		assert.Equal(t, cmderrors.ErrCodeUnauthorized, cmderrors.CodeOf(err))
	})
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		ref       string
		wantNS    string
		wantName  string
		wantError bool
	}{
		{"ops/snow-creds", "ops", "snow-creds", false},
		{" ops/snow-creds ", "ops", "snow-creds", false},
		{"snow-creds", "", "", true},
		{"/snow-creds", "", "", true},
		{"ops/", "", "", true},
		{"ops/a/b", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ns, name, err := ParseSecretRef(tt.ref)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNS, ns)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestCredentialsFromSecret(t *testing.T) {
	ctx := context.Background()
	clientset := fake.NewClientset(
		&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ops", Name: "snow-creds"},
			Data: map[string][]byte{
				SecretUsernameKey: []byte("svc"),
				SecretPasswordKey: []byte("pw"),
			},
		},
		&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ops", Name: "partial"},
			Data:       map[string][]byte{SecretUsernameKey: []byte("svc")},
		},
	)

	t.Run("found", func(t *testing.T) {
		c, err := CredentialsFromSecret(ctx, clientset, "ops/snow-creds")
		require.NoError(t, err)
		assert.Equal(t, "svc", c.Username)
		assert.Equal(t, "pw", c.Password)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := CredentialsFromSecret(ctx, clientset, "ops/missing")
		require.Error(t, err)
		assert.Equal(t, cmderrors.ErrCodeNotFound, cmderrors.CodeOf(err))
	})

	t.Run("missing password key", func(t *testing.T) {
		_, err := CredentialsFromSecret(ctx, clientset, "ops/partial")
		require.Error(t, err)
		assert.Equal(t, cmderrors.ErrCodeUnauthorized, cmderrors.CodeOf(err))
	})

	t.Run("bad reference", func(t *testing.T) {
		_, err := CredentialsFromSecret(ctx, clientset, "snow-creds")
		require.Error(t, err)
		assert.Equal(t, cmderrors.ErrCodeInvalidRequest, cmderrors.CodeOf(err))
	})
}
