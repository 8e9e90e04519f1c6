package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"porchlight/internal/utils/logger"
)

var (
	firebaseOnce sync.Once
	firebaseErr  error

	firebaseApp     *firebase.App
	firebaseAuth    *auth.Client
	firestoreClient *firestore.Client

	// sdkInits counts how many times the SDK was actually initialized.
	// It stays at zero when credentials are absent and never exceeds one.
	sdkInits int
)

// InitFirebase initializes the Firebase Admin SDK exactly once per process.
//
// When no credentials are configured it logs a warning and leaves every
// client nil instead of failing: the server still boots, and routes that
// need Firebase answer 503 (see middleware.AuthMiddleware).
func InitFirebase(ctx context.Context, cfg *Config, log *logger.Logger) error {
	firebaseOnce.Do(func() {
		if cfg.Firebase.CredentialsJSON == "" {
			log.Warn("FIREBASE_CONFIG_DATA not set, skipping Firebase Admin SDK initialization")
			return
		}

		// its a base64 encoded service account json
		decoded, err := decodeFirebaseCredentials(cfg.Firebase.CredentialsJSON)
		if err != nil {
			firebaseErr = fmt.Errorf("failed to decode Firebase credentials: %w", err)
			return
		}

		opt := option.WithCredentialsJSON(decoded)
		conf := &firebase.Config{ProjectID: cfg.Firebase.ProjectID}

		app, err := firebase.NewApp(ctx, conf, opt)
		if err != nil {
			firebaseErr = fmt.Errorf("failed to initialize Firebase app: %w", err)
			return
		}
		sdkInits++
		firebaseApp = app

		authClient, err := app.Auth(ctx)
		if err != nil {
			firebaseErr = fmt.Errorf("failed to initialize Firebase auth client: %w", err)
			return
		}
		firebaseAuth = authClient

		fsClient, err := app.Firestore(ctx)
		if err != nil {
			firebaseErr = fmt.Errorf("failed to initialize Firestore client: %w", err)
			return
		}
		firestoreClient = fsClient

		log.Success("Firebase Admin SDK initialized")
	})

	return firebaseErr
}

func decodeFirebaseCredentials(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}

// FirebaseEnabled reports whether the Admin SDK was initialized.
func FirebaseEnabled() bool {
	return firebaseAuth != nil
}

// FirebaseAuth returns the auth client, nil when Firebase is disabled.
func FirebaseAuth() *auth.Client {
	return firebaseAuth
}

// FirestoreClient returns the Firestore client, nil when Firebase is disabled.
func FirestoreClient() *firestore.Client {
	return firestoreClient
}

// resetFirebase rearms the init latch. Test helper only.
func resetFirebase() {
	firebaseOnce = sync.Once{}
	firebaseErr = nil
	firebaseApp = nil
	firebaseAuth = nil
	firestoreClient = nil
	sdkInits = 0
}
