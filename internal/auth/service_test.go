package auth_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepository struct {
	passwordHash string
	actorID      int64
	actor        *auth.Actor
	lookupError  error
}

func (m *mockAuthRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.lookupError != nil {
		return "", 0, m.lookupError
	}
	return m.passwordHash, m.actorID, nil
}

func (m *mockAuthRepository) GetActorByID(actorID int64) (*auth.Actor, error) {
	if m.actor == nil {
		return nil, errors.New("actor not found")
	}
	return m.actor, nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo     *mockAuthRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockAuthRepository{
			passwordHash: string(hash),
			actorID:      42,
			actor:        &auth.Actor{ID: 42, OrgID: 1, Email: "taro@acme.example", Role: auth.RoleMember},
		}
		tokenGen = auth.NewJWTTokenGenerator(
			"access-secret-that-is-long-enough-000",
			"refresh-secret-that-is-long-enough-00",
			15*time.Minute,
			7*24*time.Hour,
		)
		service = auth.NewService(repo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "taro@acme.example",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "taro@acme.example",
				Password: "wrong-password",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email without leaking whether it exists", func() {
			repo.lookupError = errors.New("no rows")
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@acme.example",
				Password: "correct-password",
			})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("token validation", func() {
		It("round-trips access token claims", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "taro@acme.example",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ActorID).To(Equal(int64(42)))
			Expect(claims.Email).To(Equal("taro@acme.example"))
		})

		It("refreshes a token pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "taro@acme.example",
				Password: "correct-password",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ActorID).To(Equal(int64(42)))
		})

		It("rejects a garbage token", func() {
			_, err := service.ValidateAccessToken("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
