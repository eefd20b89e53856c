package i18n

import (
	"strconv"
	"strings"
)

type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type emailStrings struct {
	VerificationSubject string
	VerificationText    string
	VerificationHTML    string

	PasswordResetSubject string
	PasswordResetText    string
	PasswordResetHTML    string

	SignInSubject string
	SignInText    string
	SignInHTML    string

	UnknownLocation string
	UnknownDevice   string
}

var emailTranslations = map[string]emailStrings{
	"en": {
		VerificationSubject: "Verify your email",
		VerificationText:    "Your verification code is {code}. It is valid for {minutes} minutes.",
		VerificationHTML: "<p>Verify your email</p>" +
			"<p>Use the code below to verify your email address.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>The code expires in {minutes} minutes.</p>" +
			"<p>If you did not request this, you can ignore this email.</p>",

		PasswordResetSubject: "Reset your password",
		PasswordResetText: "Your password reset code is {code}, or open this link: {link}\n" +
			"Both expire in {minutes} minutes.\nIf you did not request this, ignore this email.",
		PasswordResetHTML: "<p>Password reset</p>" +
			"<p>Enter the code below, or click the link to reset your password.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p><a href=\"{link}\">Reset password</a></p>" +
			"<p>Both expire in {minutes} minutes.</p>" +
			"<p>If you did not request this, ignore this email.</p>",

		SignInSubject: "New sign-in to your account",
		SignInText: "Hi {email},\n\nA new sign-in occurred on {time}.\n\n" +
			"IP: {ip}\nDevice: {device}\n\n" +
			"If this wasn't you, please reset your password and revoke other sessions.",
		SignInHTML: "<p>Hi {email},</p>" +
			"<p>A new sign-in occurred on <strong>{time}</strong>.</p>" +
			"<ul><li><strong>IP:</strong> {ip}</li>" +
			"<li><strong>Device:</strong> {device}</li></ul>" +
			"<p>If this wasn't you, please reset your password and revoke other sessions.</p>",

		UnknownLocation: "Unknown location",
		UnknownDevice:   "Unknown device",
	},
	"de": {
		VerificationSubject: "Bestätige deine E-Mail-Adresse",
		VerificationText:    "Dein Bestätigungscode lautet {code}. Er ist {minutes} Minuten gültig.",
		VerificationHTML: "<p>Bestätige deine E-Mail-Adresse</p>" +
			"<p>Verwende den folgenden Code, um deine E-Mail-Adresse zu bestätigen.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>Der Code läuft in {minutes} Minuten ab.</p>" +
			"<p>Wenn du das nicht angefordert hast, kannst du diese E-Mail ignorieren.</p>",

		PasswordResetSubject: "Passwort zurücksetzen",
		PasswordResetText: "Dein Code zum Zurücksetzen lautet {code}, oder öffne diesen Link: {link}\n" +
			"Beide laufen in {minutes} Minuten ab.\nWenn du das nicht angefordert hast, ignoriere diese E-Mail.",
		PasswordResetHTML: "<p>Passwort zurücksetzen</p>" +
			"<p>Gib den folgenden Code ein oder klicke auf den Link, um dein Passwort zurückzusetzen.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p><a href=\"{link}\">Passwort zurücksetzen</a></p>" +
			"<p>Beide laufen in {minutes} Minuten ab.</p>" +
			"<p>Wenn du das nicht angefordert hast, ignoriere diese E-Mail.</p>",

		SignInSubject: "Neue Anmeldung bei deinem Konto",
		SignInText: "Hallo {email},\n\nam {time} gab es eine neue Anmeldung.\n\n" +
			"IP: {ip}\nGerät: {device}\n\n" +
			"Wenn du das nicht warst, setze bitte dein Passwort zurück und beende andere Sitzungen.",
		SignInHTML: "<p>Hallo {email},</p>" +
			"<p>Am <strong>{time}</strong> gab es eine neue Anmeldung.</p>" +
			"<ul><li><strong>IP:</strong> {ip}</li>" +
			"<li><strong>Gerät:</strong> {device}</li></ul>" +
			"<p>Wenn du das nicht warst, setze bitte dein Passwort zurück und beende andere Sitzungen.</p>",

		UnknownLocation: "Unbekannter Ort",
		UnknownDevice:   "Unbekanntes Gerät",
	},
}

func stringsFor(locale string) emailStrings {
	if s, ok := emailTranslations[locale]; ok {
		return s
	}
	return emailTranslations[DefaultLocale]
}

func VerificationEmail(locale, code string, minutes int) EmailContent {
	s := stringsFor(locale)
	repl := strings.NewReplacer("{code}", code, "{minutes}", strconv.Itoa(minutes))
	return EmailContent{
		Subject: s.VerificationSubject,
		Text:    repl.Replace(s.VerificationText),
		HTML:    repl.Replace(s.VerificationHTML),
	}
}

func PasswordResetEmail(locale, code, link string, minutes int) EmailContent {
	s := stringsFor(locale)
	repl := strings.NewReplacer("{code}", code, "{link}", link, "{minutes}", strconv.Itoa(minutes))
	return EmailContent{
		Subject: s.PasswordResetSubject,
		Text:    repl.Replace(s.PasswordResetText),
		HTML:    repl.Replace(s.PasswordResetHTML),
	}
}

func SignInAlertEmail(locale, email, signInTime, ip, device string) EmailContent {
	s := stringsFor(locale)
	if strings.TrimSpace(ip) == "" {
		ip = s.UnknownLocation
	}
	if strings.TrimSpace(device) == "" {
		device = s.UnknownDevice
	}
	repl := strings.NewReplacer("{email}", email, "{time}", signInTime, "{ip}", ip, "{device}", device)
	return EmailContent{
		Subject: s.SignInSubject,
		Text:    repl.Replace(s.SignInText),
		HTML:    repl.Replace(s.SignInHTML),
	}
}
