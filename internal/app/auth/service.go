package auth

import "context"

// Service bundles the auth use cases behind plain method calls for
// consumers that don't care about the request/response types.
type Service struct {
	SignInUC SignInUseCase
	SignUpUC SignUpUseCase
}

func (s Service) SignIn(ctx context.Context, email, password string) (Identity, error) {
	return s.SignInUC.Execute(ctx, SignInRequest{Email: email, Password: password})
}

func (s Service) SignUp(ctx context.Context, email, password, name string) (Identity, error) {
	return s.SignUpUC.Execute(ctx, SignUpRequest{Email: email, Password: password, Name: name})
}
