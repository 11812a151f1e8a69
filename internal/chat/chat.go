package chat

import (
	"context"
	"errors"

	"github.com/mrimoveis/brokersite/internal/domain"
)

// SystemPrompt is the fixed persona for the site assistant. The site serves
// a Brazilian audience, so the persona answers in pt-BR and routes anything
// it cannot answer to the broker's WhatsApp.
const SystemPrompt = `Você é o Consultor Virtual oficial da Imóveis MR.

Contexto Institucional:
- Imobiliária: Imóveis MR.
- Gestão: Maria de Lourdes Lima (Corretora com CRECI 19855-F).
- Especialidade: Imóveis de alto padrão, luxo e conforto.
- Localização: Atuação principal em áreas nobres (casas, apartamentos e escritórios).

Seu Comportamento:
- Seja extremamente educado, sofisticado e prestativo.
- Use Português do Brasil de forma clara e profissional.
- Ajude os usuários a entenderem as categorias do site (Casas, Apartamentos, Escritórios).
- Se perguntarem sobre valores, explique que os preços são competitivos para o mercado de luxo e variam conforme a localização.
- Caso o cliente queira agendar uma visita ou tenha dúvidas específicas sobre um imóvel que você não saiba responder, direcione-o gentilmente para o WhatsApp: (11) 98605-4846.

Diretriz Importante:
- Não invente informações técnicas que não estejam no site.
- Sua missão é converter a dúvida em um contato para a Maria de Lourdes Lima.`

// FallbackReply is returned when the provider answers with empty text.
const FallbackReply = "Poderia reformular sua pergunta? Estou pronto para ajudar com seu novo imóvel."

var (
	// ErrNoCredential means no provider API key is configured. This is the
	// most common failure; callers show a setup prompt, not a generic error.
	ErrNoCredential = errors.New("assistant credential not configured")
	// ErrProviderAuth means the provider rejected the configured credential.
	// Same remediation as ErrNoCredential.
	ErrProviderAuth = errors.New("assistant credential rejected")
	// ErrProviderUnavailable covers everything else: network, rate limits,
	// malformed responses. Callers suggest trying again.
	ErrProviderUnavailable = errors.New("assistant temporarily unavailable")
)

// Assistant answers a visitor question given the prior conversation, oldest
// turn first. Each call is fully described by its inputs; nothing is
// persisted or retried.
type Assistant interface {
	Ask(ctx context.Context, message string, history []domain.ChatMessage) (string, error)
}
