package security

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("anything", []byte("not-an-argon2-hash")); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := VerifyPassword("anything", []byte("$bcrypt$v=19$t=3,m=65536,p=2$c2FsdA$aGFzaA")); err == nil {
		t.Fatal("expected error for wrong algorithm tag")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) == string(second) {
		t.Fatal("two hashes of the same password are identical")
	}
}
