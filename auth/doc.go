// Package auth resolves bearer tokens to users.
//
// Tokens are JWTs whose "sub" claim is the user id, as issued by Supabase
// auth (HS256 with the project's JWT secret, audience "authenticated").
// Subpackages:
//
//   - auth/jwt      token signing and verification
//   - auth/authctx  request context propagation of the authenticated user
//
//	auth:
//	  enabled: true
//	  jwt:
//	    secret: "${SUPABASE_JWT_SECRET}"
//	    audience: ["authenticated"]
package auth
